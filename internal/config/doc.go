// Package config provides the configuration of preflightreport: the values
// collected from command line flags, the optional YAML configuration file
// with per-preflight-profile overrides, and the XDG directories used for the
// history database.
package config
