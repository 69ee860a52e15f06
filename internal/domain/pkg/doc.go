// Package pkg defines the package model shared by the packlab tools.
//
// A package is configured from two records: a local declaration naming the
// packages a project registers and where their sources live, and a manifest
// carrying the metadata the package publishes about itself. Build merges the
// two into a Descriptor, the immutable record the installer and the
// submission client consume.
package pkg
