package protocol

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidesync/tidesync/pkg/stream"
	"github.com/tidesync/tidesync/pkg/transport"
)

// futureTime returns a timestamp safely after any file created moments ago,
// used to force the modified-file test's source mtime past its basis.
func futureTime() time.Time {
	return time.Now().Add(time.Hour)
}

// loopback pairs two Transports over in-process io.Pipe connections, one for
// each direction, so the sender and receiver roles can run concurrently in
// the same test process without a real subprocess.
func loopback(t *testing.T) (*transport.Transport, *transport.Transport) {
	t.Helper()

	senderReader, receiverWriter := io.Pipe()
	receiverReader, senderWriter := io.Pipe()

	senderSide, err := transport.New(senderReader, senderWriter, stream.NewMultiCloser(senderReader, senderWriter))
	if err != nil {
		t.Fatalf("transport.New failed: %v", err)
	}
	receiverSide, err := transport.New(receiverReader, receiverWriter, stream.NewMultiCloser(receiverReader, receiverWriter))
	if err != nil {
		t.Fatalf("transport.New failed: %v", err)
	}
	return senderSide, receiverSide
}

// writeTree creates a small tree: a regular file, a directory with a nested
// file, a symlink, and a binary file, matching the fixture spec.md §8's
// testable property #6 describes.
func writeTree(t *testing.T, root string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hello, world"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "dir"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "dir", "nested.txt"), []byte("nested content"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink("readme.txt", filepath.Join(root, "alias")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}
	binary := make([]byte, 4096)
	for i := range binary {
		binary[i] = byte(i * 7 % 251)
	}
	if err := os.WriteFile(filepath.Join(root, "blob.bin"), binary, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func runSession(t *testing.T, sourceRoot, destRoot string, deleteMode bool) {
	t.Helper()

	senderSide, receiverSide := loopback(t)
	defer senderSide.Close()
	defer receiverSide.Close()

	sender := NewSender(senderSide, Options{Root: sourceRoot, Recursive: true, Delete: deleteMode}, nil)
	receiver := NewReceiver(receiverSide, Options{Root: destRoot, Recursive: true, Delete: deleteMode}, nil)

	senderErrs := make(chan error, 1)
	go func() {
		senderErrs <- sender.Run()
	}()

	if err := receiver.Run(); err != nil {
		t.Fatalf("receiver.Run failed: %v", err)
	}
	if err := <-senderErrs; err != nil {
		t.Fatalf("sender.Run failed: %v", err)
	}
}

func requireTreesEqual(t *testing.T, sourceRoot, destRoot string) {
	t.Helper()

	sourceDescriptors, err := Walk(sourceRoot, true, nil)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	for _, descriptor := range sourceDescriptors {
		destPath := filepath.Join(destRoot, descriptor.Path)
		switch descriptor.Kind() {
		case KindDirectory:
			info, err := os.Stat(destPath)
			if err != nil || !info.IsDir() {
				t.Fatalf("expected directory at %s", destPath)
			}
		case KindSymlink:
			target, err := os.Readlink(destPath)
			if err != nil {
				t.Fatalf("unable to read link at %s: %v", destPath, err)
			}
			if target != descriptor.LinkTarget {
				t.Fatalf("link target mismatch at %s: got %s, want %s", destPath, target, descriptor.LinkTarget)
			}
		default:
			sourceContent, err := os.ReadFile(filepath.Join(sourceRoot, descriptor.Path))
			if err != nil {
				t.Fatalf("unable to read source file: %v", err)
			}
			destContent, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("unable to read dest file: %v", err)
			}
			if string(sourceContent) != string(destContent) {
				t.Fatalf("content mismatch at %s", descriptor.Path)
			}
		}
	}
}

func TestSessionFullSyncThenNoOp(t *testing.T) {
	sourceRoot := t.TempDir()
	destRoot := t.TempDir()
	writeTree(t, sourceRoot)

	runSession(t, sourceRoot, destRoot, false)
	requireTreesEqual(t, sourceRoot, destRoot)

	// A second identical cycle should find every path already in sync.
	senderSide, receiverSide := loopback(t)
	defer senderSide.Close()
	defer receiverSide.Close()

	sender := NewSender(senderSide, Options{Root: sourceRoot, Recursive: true}, nil)
	receiver := NewReceiver(receiverSide, Options{Root: destRoot, Recursive: true}, nil)

	senderErrs := make(chan error, 1)
	go func() {
		senderErrs <- sender.Run()
	}()
	if err := receiver.Run(); err != nil {
		t.Fatalf("second receiver.Run failed: %v", err)
	}
	if err := <-senderErrs; err != nil {
		t.Fatalf("second sender.Run failed: %v", err)
	}

	requireTreesEqual(t, sourceRoot, destRoot)
}

func TestSessionDeleteRemovesStaleEntries(t *testing.T) {
	sourceRoot := t.TempDir()
	destRoot := t.TempDir()
	writeTree(t, sourceRoot)

	if err := os.WriteFile(filepath.Join(destRoot, "stale.txt"), []byte("old"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	runSession(t, sourceRoot, destRoot, true)
	requireTreesEqual(t, sourceRoot, destRoot)

	if _, err := os.Stat(filepath.Join(destRoot, "stale.txt")); !os.IsNotExist(err) {
		t.Fatal("expected stale.txt to be deleted")
	}
}

func TestSessionDeltaUpdatesModifiedFile(t *testing.T) {
	sourceRoot := t.TempDir()
	destRoot := t.TempDir()

	base := make([]byte, 300*1024)
	for i := range base {
		base[i] = byte(i % 256)
	}
	if err := os.WriteFile(filepath.Join(sourceRoot, "big.bin"), base, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(destRoot, "big.bin"), base, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	modified := make([]byte, len(base))
	copy(modified, base)
	modified[len(modified)-1] = modified[len(modified)-1] + 1
	if err := os.WriteFile(filepath.Join(sourceRoot, "big.bin"), modified, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Chtimes(filepath.Join(sourceRoot, "big.bin"), futureTime(), futureTime()); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	runSession(t, sourceRoot, destRoot, false)
	requireTreesEqual(t, sourceRoot, destRoot)
}
