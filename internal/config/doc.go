// Package config loads application configuration from environment variables
// (prefix KLV) layered over an optional YAML file, and centralizes filesystem
// path resolution.
package config
