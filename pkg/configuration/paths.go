package configuration

import (
	"github.com/tidesync/tidesync/pkg/filesystem"
)

// GlobalConfigurationPath returns the path of the YAML-based global
// configuration file. It does not verify that the file exists.
func GlobalConfigurationPath() (string, error) {
	return filesystem.ConfigurationPath, nil
}
