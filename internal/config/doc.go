// Package config defines the application's configuration structure and
// loading behavior. Values come from defaults, an optional YAML config file,
// and REQPOOL_-prefixed environment variables, in increasing precedence.
package config
