// Package configuration provides loading facilities for tidesync's
// YAML-based global and per-session configuration files.
package configuration
