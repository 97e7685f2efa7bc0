package config

import "github.com/awantoch/flowviz/constants"

// Default directories and file paths for flowviz.
const (
	// DefaultConfigDir is the base directory for flowviz artifacts.
	DefaultConfigDir = constants.DefaultDataDir
	// DefaultBlobDir is where published diagrams land on the filesystem.
	DefaultBlobDir = constants.DefaultBlobDir
	// DefaultSQLiteDSN is the render history database.
	DefaultSQLiteDSN = constants.DefaultSQLiteDB
)

// DefaultConfigPath is the config file read when --config is not given.
const DefaultConfigPath = constants.ConfigFileName
