package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tidesync/tidesync/pkg/must"
)

const (
	// atomicWriteTemporaryNamePrefix is the file name prefix to use for
	// intermediate temporary files used in atomic writes.
	atomicWriteTemporaryNamePrefix = TemporaryNamePrefix + "atomic-write"
)

// WriteFileAtomic writes a file to disk in an atomic fashion by using an
// intermediate temporary file that is swapped in place using a rename
// operation.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode) error {
	// Create a temporary file. The os package already uses secure permissions
	// for creating temporary files, so we don't need to change them.
	temporary, err := os.CreateTemp(filepath.Dir(path), atomicWriteTemporaryNamePrefix)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}

	// Write data.
	if _, err = temporary.Write(data); err != nil {
		must.Close(temporary, nil)
		must.OSRemove(temporary.Name(), nil)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}

	// Close out the file.
	if err = temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), nil)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	// Set the file's permissions.
	if err = os.Chmod(temporary.Name(), permissions); err != nil {
		must.OSRemove(temporary.Name(), nil)
		return fmt.Errorf("unable to change file permissions: %w", err)
	}

	// Rename the file.
	if err = renameWithCrossDeviceFallback(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), nil)
		return fmt.Errorf("unable to rename file: %w", err)
	}

	// Success.
	return nil
}

// renameWithCrossDeviceFallback renames oldPath to newPath, falling back to
// a copy-then-remove if the rename fails because the two paths live on
// different devices (spec.md §7's "atomically rename on success" is still
// honored in the fallback: the copy lands at newPath via a second temporary
// file in newPath's directory, then is renamed into place there, so a
// reader never observes a partially-copied file at newPath).
func renameWithCrossDeviceFallback(oldPath, newPath string) error {
	err := os.Rename(oldPath, newPath)
	if err == nil || !isCrossDeviceError(err) {
		return err
	}

	source, openErr := os.Open(oldPath)
	if openErr != nil {
		return err
	}
	defer source.Close()

	info, statErr := source.Stat()
	if statErr != nil {
		return err
	}

	staged, createErr := os.CreateTemp(filepath.Dir(newPath), atomicWriteTemporaryNamePrefix)
	if createErr != nil {
		return err
	}
	defer os.Remove(staged.Name())

	if _, copyErr := io.Copy(staged, source); copyErr != nil {
		staged.Close()
		return err
	}
	if closeErr := staged.Close(); closeErr != nil {
		return err
	}
	if chmodErr := os.Chmod(staged.Name(), info.Mode()); chmodErr != nil {
		return err
	}
	if renameErr := os.Rename(staged.Name(), newPath); renameErr != nil {
		return err
	}

	os.Remove(oldPath)
	return nil
}
