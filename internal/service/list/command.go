package list

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/workspace"
)

// descriptionWidthMax keeps long manifest descriptions from flooding the
// terminal.
const descriptionWidthMax = 60

// Options contains inputs for the list entry point.
type Options struct {
	// Dir is the directory to resolve the workspace from (defaults to the working directory).
	Dir string
	// Quiet prints bare package names instead of the table.
	Quiet bool
	// Output receives the listing (defaults to standard output).
	Output io.Writer
}

// Run prints the packages of the enclosing workspace.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packlab-list")

	dir := opts.Dir
	if dir == "" {
		workingDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}

		dir = workingDir
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	root, err := workspace.FindRoot(dir)
	if err != nil {
		return fmt.Errorf("run this command inside your workspace: %w", err)
	}

	packages, err := workspace.Scan(root)
	if err != nil {
		return err
	}

	if len(packages) == 0 {
		logger.InfoKV(ctx, "Workspace has no packages", "root", root)
		return nil
	}

	if opts.Quiet {
		return printNames(output, packages)
	}

	renderTable(output, root, packages)

	return nil
}

// printNames writes one package name per line.
func printNames(output io.Writer, packages []*workspace.Package) error {
	for _, found := range packages {
		if _, err := fmt.Fprintln(output, found.Name); err != nil {
			return err
		}
	}

	return nil
}

// renderTable writes the package inventory as a table.
func renderTable(output io.Writer, root string, packages []*workspace.Package) {
	t := table.NewWriter()
	t.SetOutputMirror(output)
	t.AppendHeader(table.Row{"Name", "Version", "Path", "Description"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: descriptionWidthMax}})
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false

	for _, found := range packages {
		relativePath, err := filepath.Rel(root, found.Dir)
		if err != nil {
			relativePath = found.Dir
		}

		t.AppendRow(table.Row{
			found.Name,
			found.Manifest.Version,
			relativePath,
			found.Manifest.Description,
		})
	}

	t.Render()
}
