package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// configurationName is the name of the global configuration file inside
	// the user's home directory.
	configurationName = ".tidesync.yaml"

	// DataDirectoryName is the name of the tidesync data directory inside the
	// user's home directory.
	DataDirectoryName = ".tidesync"

	// CacheDirectoryName is the name of the cache subdirectory within the
	// data directory. No code in this module creates or reads it.
	CacheDirectoryName = "cache"
)

// HomeDirectory is the cached path to the current user's home directory.
var HomeDirectory string

// DataDirectoryPath is the path to the tidesync data directory. It can be
// overridden by init functions, but should not be changed afterward.
var DataDirectoryPath string

// ConfigurationPath is the path to the global tidesync configuration file.
var ConfigurationPath string

// init performs global initialization.
func init() {
	// Grab the current user's home directory.
	if h, err := os.UserHomeDir(); err != nil {
		panic(errors.Wrap(err, "unable to query user's home directory"))
	} else if h == "" {
		panic(errors.New("home directory path empty"))
	} else {
		HomeDirectory = h
	}

	// Compute the path to the data directory.
	DataDirectoryPath = filepath.Join(HomeDirectory, DataDirectoryName)

	// Compute the path to the configuration file.
	ConfigurationPath = filepath.Join(HomeDirectory, configurationName)
}

// Subpath computes (and optionally creates) subdirectories inside the
// tidesync data directory.
func Subpath(create bool, pathComponents ...string) (string, error) {
	// Compute the target path.
	result := filepath.Join(DataDirectoryPath, filepath.Join(pathComponents...))

	// If requested, attempt to create the directory and mark it hidden.
	if create {
		if err := os.MkdirAll(result, 0700); err != nil {
			return "", errors.Wrap(err, "unable to create subpath")
		} else if err := MarkHidden(DataDirectoryPath); err != nil {
			return "", errors.Wrap(err, "unable to hide data directory")
		}
	}

	// Success.
	return result, nil
}
