// Package config defines the configuration of a node process.
//
// The commands in src/cmd fill a Config from, in increasing order of
// precedence, its defaults, an optional file in Config.DataDir, environment
// variables prefixed with GLOMERS_, and command-line flags:
//
//  glomers.toml // (optional) or glomers.json, glomers.yaml
//
// Whatever the source, logs never go to stdout, which carries the protocol.
package config
