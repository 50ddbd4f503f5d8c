package compression

import (
	"bytes"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	defer codec.Close()

	original := bytes.Repeat([]byte("a"), 10000)
	compressed := codec.Compress(original)
	if len(compressed) >= len(original) {
		t.Fatalf("expected compression to shrink a highly repetitive payload")
	}

	decompressed, err := codec.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Fatal("round trip mismatch")
	}
}

func TestCodecEmptyPayload(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	defer codec.Close()

	compressed := codec.Compress(nil)
	decompressed, err := codec.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if len(decompressed) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(decompressed))
	}
}
