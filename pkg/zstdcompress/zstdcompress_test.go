package zstdcompress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompress(t *testing.T) {
	data := []byte("Hello, world! This is a macro library document to compress.")

	compressed := Compress(data)
	assert.NotEmpty(t, compressed)

	decompressed, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("not a zstd frame"))
	assert.Error(t, err, "arbitrary bytes must not decode as a frame")
}

func TestPathHelpers(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		compressed bool
		trimmed    string
	}{
		{"compressed library", "combat.bplib.json.zst", true, "combat.bplib.json"},
		{"plain library", "combat.bplib.json", false, "combat.bplib.json"},
		{"bare extension", ".zst", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.compressed, IsCompressedPath(tt.path))
			assert.Equal(t, tt.trimmed, TrimExtension(tt.path))
		})
	}
}
