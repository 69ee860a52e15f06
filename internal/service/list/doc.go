// Package list prints the package inventory of a workspace.
//
// The default output is a table with name, version, path and description;
// quiet mode prints bare names for scripting.
package list
