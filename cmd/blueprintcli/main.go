package main

import "github.com/Far-Beyond-Pulsar/blueprint-core/internal/cli"

func main() {
	cli.Execute()
}
