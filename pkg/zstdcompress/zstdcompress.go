package zstdcompress

import (
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Extension marks compressed macro library documents on disk.
const Extension = ".zst"

var encoder, _ = zstd.NewWriter(nil)

// Compress a buffer.
// If you have a destination buffer, the allocation in the call can also be eliminated.
func Compress(src []byte) []byte {
	return encoder.EncodeAll(src, make([]byte, 0, len(src)))
}

var decoder, _ = zstd.NewReader(nil)

func Decompress(src []byte) ([]byte, error) {
	return decoder.DecodeAll(src, nil)
}

// IsCompressedPath reports whether the file carries the zstd extension.
func IsCompressedPath(path string) bool {
	return strings.HasSuffix(path, Extension)
}

// TrimExtension drops the zstd suffix so callers can recover the logical
// document name.
func TrimExtension(path string) string {
	return strings.TrimSuffix(path, Extension)
}
