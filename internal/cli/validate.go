package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid          bool                   `json:"valid"`
	SubjectField   string                 `json:"subject_field,omitempty"`
	WholeTextRules []string               `json:"whole_text_rules,omitempty"`
	CharacterRules []string               `json:"character_rules,omitempty"`
	Errors         []*config.CompileError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a propagation configuration",
		Long: `Validate a propagation configuration file (.yaml, .yml, .json or .cue).

Every problem is reported at once: missing fields, patterns that fail to
compile, blank-out patterns without a capture group, unknown character
filters and character rules without destinations.

Exit codes:
  0 - Configuration valid
  1 - Configuration invalid
  2 - File missing, unreadable or of unsupported type`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		var loadErr *config.LoadError
		if errors.As(err, &loadErr) {
			return outputValidateLoadError(formatter, loadErr)
		}
		var compileErrs config.Errors
		if errors.As(err, &compileErrs) {
			return outputValidationErrors(formatter, compileErrs)
		}
		return outputValidateLoadError(formatter, &config.LoadError{Code: config.ErrCodeGeneric, Path: path, Message: err.Error()})
	}

	result := ValidationResult{Valid: true, SubjectField: cfg.SubjectField}
	for _, r := range cfg.WholeText {
		result.WholeTextRules = append(result.WholeTextRules, r.Name)
	}
	for _, r := range cfg.Characters {
		result.CharacterRules = append(result.CharacterRules, r.Name)
	}
	formatter.VerboseLog("Compiled %d whole-text and %d character rule(s)", len(cfg.WholeText), len(cfg.Characters))

	return outputValidateSuccess(formatter, result)
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Configuration valid")
	fmt.Fprintf(w, "  subject field: %s\n", result.SubjectField)
	for _, name := range result.WholeTextRules {
		fmt.Fprintf(w, "  whole-text rule: %s\n", name)
	}
	for _, name := range result.CharacterRules {
		fmt.Fprintf(w, "  character rule: %s\n", name)
	}
	return nil
}

func outputValidateLoadError(formatter *OutputFormatter, loadErr *config.LoadError) error {
	if err := formatter.Error(loadErr.Code, loadErr.Message, map[string]string{"path": loadErr.Path}); err != nil {
		return err
	}
	return WrapExitError(ExitCommandError, loadErr.Code, loadErr)
}

func outputValidationErrors(formatter *OutputFormatter, errs config.Errors) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
