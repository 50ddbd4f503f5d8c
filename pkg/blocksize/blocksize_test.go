package blocksize

import "testing"

func TestFor(t *testing.T) {
	cases := []struct {
		length uint64
		want   uint64
	}{
		{0, WholeFile},
		{128*KiB - 1, WholeFile},
		{128 * KiB, 128 * KiB},
		{16*MiB - 1, 128 * KiB},
		{16 * MiB, 1 * MiB},
		{256*MiB - 1, 1 * MiB},
		{256 * MiB, 16 * MiB},
		{4*GiB - 1, 16 * MiB},
		{4 * GiB, 128 * MiB},
		{64*GiB - 1, 128 * MiB},
		{64 * GiB, 1 * GiB},
		{1000 * GiB, 1 * GiB},
	}
	for _, c := range cases {
		if got := For(c.length); got != c.want {
			t.Errorf("For(%d) = %d, want %d", c.length, got, c.want)
		}
	}
}

func TestNoBasis(t *testing.T) {
	if NoBasis != 128*KiB {
		t.Fatalf("expected NoBasis to be 128 KiB, got %d", NoBasis)
	}
}
