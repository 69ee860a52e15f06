// Package workspace discovers robot-lab workspaces and the packages inside.
//
// A workspace is a directory with a src subdirectory holding one package per
// directory, each identified by its manifest. FindRoot locates the enclosing
// workspace from any directory inside it, Scan inventories the packages and
// FindPackage looks a single one up by name.
package workspace
