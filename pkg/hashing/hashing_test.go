package hashing

import (
	"bytes"
	"testing"
)

func TestWeakDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	if Weak(data) != Weak(data) {
		t.Fatal("weak hash not deterministic")
	}
}

func TestWeakDiffers(t *testing.T) {
	if Weak([]byte("hello")) == Weak([]byte("world")) {
		t.Fatal("weak hash collided on trivial distinct inputs")
	}
}

func TestWeakEmpty(t *testing.T) {
	// Must not panic on an empty block.
	Weak(nil)
}

func TestStrongDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	a := Strong(data)
	b := Strong(data)
	if !bytes.Equal(a[:], b[:]) {
		t.Fatal("strong hash not deterministic")
	}
}

func TestStrongSize(t *testing.T) {
	digest := Strong([]byte("test"))
	if len(digest) != StrongSize {
		t.Fatalf("expected %d-byte digest, got %d", StrongSize, len(digest))
	}
}

func TestStrongDiffers(t *testing.T) {
	a := Strong([]byte("hello"))
	b := Strong([]byte("world"))
	if bytes.Equal(a[:], b[:]) {
		t.Fatal("strong hash collided on trivial distinct inputs")
	}
}

func TestAlgorithmRoundTrip(t *testing.T) {
	for _, algorithm := range []Algorithm{Default, SHA1, SHA256} {
		text, err := algorithm.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed for %v: %v", algorithm, err)
		}
		var decoded Algorithm
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText failed for %q: %v", text, err)
		}
		if decoded != algorithm {
			t.Fatalf("round trip mismatch: %v != %v", decoded, algorithm)
		}
		if !decoded.Supported() {
			t.Fatalf("expected %v to be supported", decoded)
		}
	}
}

func TestAlgorithmUnsupported(t *testing.T) {
	var a Algorithm
	if err := a.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatal("expected error unmarshalling unknown algorithm")
	}
}

func TestAlgorithmFactoryDigestSizes(t *testing.T) {
	cases := []struct {
		algorithm Algorithm
		size      int
	}{
		{Default, 16},
		{SHA1, 20},
		{SHA256, 32},
	}
	for _, c := range cases {
		digest := c.algorithm.Factory()([]byte("data"))
		if len(digest) != c.size {
			t.Fatalf("%v: expected %d-byte digest, got %d", c.algorithm, c.size, len(digest))
		}
	}
}
