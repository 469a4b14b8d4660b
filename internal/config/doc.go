// Package config holds the fixed settings of the shelley-demo CLI.
//
// There is no configuration file. Every value the original tooling kept in
// module-level constants (server config path, database path, display
// hostname, timing) lives in a Config struct that is built once by Default
// and passed explicitly to each component.
package config
