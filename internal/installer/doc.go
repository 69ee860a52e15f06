// Package installer copies the package sources named by a descriptor into an
// installation prefix.
//
// Every file is staged and applied through go-update with SHA-512
// verification, so a partially written target never replaces a good one.
// The installer records what it installed in a receipt at the prefix root
// and refuses to run while another installation holds the marker file.
package installer
