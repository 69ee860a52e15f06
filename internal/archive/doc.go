// Package archive builds the gzipped tar uploads for project submission.
//
// Pack mirrors the project checkout: entries live under the project
// directory name, symlinks are dereferenced and anything matched by the
// checkout's .gitignore or the dedicated .packlabignore file stays out.
package archive
