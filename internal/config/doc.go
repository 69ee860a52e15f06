// Package config defines the lab API access settings used by the packlab
// binaries and provides helpers to locate, load, validate and save them in
// YAML format.
//
// The Config type holds the job API and web frontend URLs plus the
// credentials used to submit projects.
package config
