// Package config provides configuration management for linkpatrol scans.
//
// It defines the runtime configuration resolved from command line flags,
// validation of that configuration, and an optional YAML configuration
// file (.linkpatrol) with per-site overrides for cookies, headers, user
// agents, and concurrency.
//
// Configuration file resolution order:
//  1. Explicit path via the --config flag
//  2. .linkpatrol in the current directory
//  3. .linkpatrol in the user's home directory
package config
