package lz4

import (
	"bytes"
	"testing"
)

func TestCompressDecompress(t *testing.T) {
	src := bytes.Repeat([]byte(`{"shortcuts":[],"groups":[]}`), 64)
	packed, err := Compress(src)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	out, err := Decompress(packed)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("Decompress() = %q, want %q", out, src)
	}
}
