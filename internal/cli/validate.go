package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/testvfs/internal/harness"
)

// ValidationIssue describes one problem found in a scenario file.
type ValidationIssue struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>...",
		Short: "Validate scenario files without running them",
		Long: `Validate YAML scenario files without executing them.

Checks YAML structure (unknown fields are rejected), counter names in
setup blocks, op names and required fields in flow steps, and assertion
types. Faster than run for development feedback.

Exit codes:
  0 - All scenario files valid
  1 - Validation failures found
  2 - Command error (path not found, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	files, err := discoverScenarioFiles(paths)
	if err != nil {
		_ = formatter.Error("E_LOAD", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to discover scenarios", err)
	}

	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	// Scenario files are independent, so validate them in parallel.
	var mu sync.Mutex
	var issues []ValidationIssue

	var g errgroup.Group
	g.SetLimit(8)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if _, err := harness.LoadScenario(file); err != nil {
				mu.Lock()
				issues = append(issues, ValidationIssue{File: file, Message: err.Error()})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result := ValidationResult{
		Valid:  len(issues) == 0,
		Files:  len(files),
		Issues: issues,
	}

	if formatter.Format == "json" {
		if !result.Valid {
			if err := formatter.Error("E_VALIDATE", fmt.Sprintf("%d file(s) invalid", len(issues)), result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
		}
		return formatter.Success(result)
	}

	if !result.Valid {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, issue := range issues {
			fmt.Fprintf(formatter.Writer, "%s\n  %s\n\n", issue.File, issue.Message)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintf(formatter.Writer, "✓ %d scenario file(s) valid\n", len(files))
	return nil
}
