// Package config handles configuration loading, parsing, and validation
// from environment variables (REMIND_ prefix) and an optional YAML file. It
// provides type-safe access to the settings of the reminder channels, the
// storage backend and the HTTP server.
package config
