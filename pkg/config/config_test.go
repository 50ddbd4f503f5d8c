package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigurationYAML = `
recursive: true
checksumMode: true
delete: true
compress: true
excludes:
  - "*.log"
  - "tmp/**"
blockSize: "256 KB"
hashAlgorithm: "sha256"
`

func TestLoadNonExistent(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !config.Equal(Default()) {
		t.Fatal("expected Load of a missing file to return the default configuration")
	}
}

func TestLoadValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidesync.yml")
	if err := os.WriteFile(path, []byte(testConfigurationYAML), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !config.ChecksumMode || !config.Delete || !config.Compress {
		t.Fatal("expected boolean fields to be loaded as true")
	}
	if len(config.Excludes) != 2 || config.Excludes[0] != "*.log" {
		t.Fatalf("unexpected excludes: %v", config.Excludes)
	}
	if config.BlockSize != 256*1000 {
		t.Fatalf("unexpected block size: %d", config.BlockSize)
	}
	if config.HashAlgorithm != 2 {
		t.Fatalf("unexpected hash algorithm: %v", config.HashAlgorithm)
	}
}

func TestLoadGibberish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidesync.yml")
	if err := os.WriteFile(path, []byte("[this is not valid yaml"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to fail on malformed YAML")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidesync.yml")
	original := &Config{
		Recursive:    true,
		ChecksumMode: true,
		Excludes:     []string{"*.tmp"},
		BlockSize:    65536,
	}
	if err := original.Save(path, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Equal(original) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", loaded, original)
	}
}

func TestEqualDetectsExcludeDifference(t *testing.T) {
	a := &Config{Excludes: []string{"one", "two"}}
	b := &Config{Excludes: []string{"one", "three"}}
	if a.Equal(b) {
		t.Fatal("expected configurations with different excludes to be unequal")
	}
}

func TestToOptionsCopiesExcludes(t *testing.T) {
	config := &Config{Recursive: true, Excludes: []string{"*.log"}}
	options := config.ToOptions("/tmp/root")

	if options.Root != "/tmp/root" || !options.Recursive {
		t.Fatal("unexpected options conversion")
	}

	options.Excludes[0] = "mutated"
	if config.Excludes[0] != "*.log" {
		t.Fatal("ToOptions should defensively copy Excludes")
	}
}
