package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/config"
	"github.com/roach88/fieldsync/internal/engine"
	"github.com/roach88/fieldsync/internal/metrics"
	"github.com/roach88/fieldsync/internal/record"
)

// PropagateOptions holds flags for the propagate command.
type PropagateOptions struct {
	*RootOptions
	StoreOptions
	Config  string
	Field   string
	Metrics bool
	AllOf   string // propagate every record of this type

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// PropagateOutput is the JSON payload of the propagate command.
type PropagateOutput struct {
	Result  *engine.Result    `json:"result"`
	Notices []string          `json:"notices,omitempty"`
	Fields  map[string]string `json:"fields"`
}

// NewPropagateCommand creates the propagate command.
func NewPropagateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PropagateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "propagate [record-id]",
		Short: "Run propagation for one record",
		Long: `Run propagation for one record as if its subject field had just lost focus.

Reference records are looked up in the same collection; the record is
persisted when any destination field changed.

Example:
  fieldsync propagate --db ./cards.db --config ./fieldsync.yaml 42
  fieldsync propagate --postgres "$DSN" --config ./fieldsync.cue --format json 42
  fieldsync propagate --db ./cards.db --config ./fieldsync.yaml --all-of Card`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.AllOf != "" && len(args) == 0:
				return runPropagateAll(opts, cmd)
			case opts.AllOf == "" && len(args) == 1:
				return runPropagate(opts, args[0], cmd)
			default:
				return NewExitError(ExitCommandError, "give either a record id or --all-of <type>")
			}
		},
	}

	opts.StoreOptions.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to propagation configuration (required)")
	cmd.Flags().StringVar(&opts.Field, "field", "", "edited field name (default: the subject field)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print outcome counters to stderr")
	cmd.Flags().StringVar(&opts.AllOf, "all-of", "", "propagate every record of this type instead of one record")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runPropagate(opts *PropagateOptions, idArg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)

	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid record id %q", idArg))
	}

	cfg, err := loadConfig(formatter, opts.Config)
	if err != nil {
		return err
	}

	st, err := opts.StoreOptions.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Record(ctx, record.ID(id))
	if errors.Is(err, record.ErrNotFound) {
		_ = formatter.Error(ErrCodeRecordNotFound, fmt.Sprintf("record %d not found", id), nil)
		return WrapExitError(ExitCommandError, ErrCodeRecordNotFound, err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, "failed to read record", err.Error())
		return WrapExitError(ExitCommandError, ErrCodeDatabase, err)
	}

	var notices []string
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithNotifier(record.NotifierFunc(func(m string) { notices = append(notices, m) })),
	}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	reg := prometheus.NewRegistry()
	if opts.Metrics {
		obs, err := metrics.New(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
		engineOpts = append(engineOpts, engine.WithObserver(obs))
	}

	field := opts.Field
	if field == "" {
		field = cfg.SubjectField
	}
	formatter.VerboseLog("Propagating record %d (%s) after edit of %q", id, rec.Type, field)

	eng := engine.New(st, cfg, engineOpts...)
	result, runErr := eng.Run(ctx, rec, field)

	if opts.Metrics {
		if err := writeMetrics(formatter, reg); err != nil {
			return err
		}
	}

	if runErr != nil && result == nil {
		_ = formatter.Error(ErrCodePropagation, runErr.Error(), nil)
		return WrapExitError(ExitFailure, ErrCodePropagation, runErr)
	}

	if err := outputPropagate(formatter, result, notices, rec, runErr); err != nil {
		return err
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, ErrCodePropagation, runErr)
	}
	return nil
}

// BatchOutput summarizes a propagate --all-of run.
type BatchOutput struct {
	Type    string      `json:"type"`
	Records int         `json:"records"`
	Changed []record.ID `json:"changed"`
	Failed  []record.ID `json:"failed,omitempty"`
}

// runPropagateAll propagates every record of one type, in id order. A record
// whose run fails is reported and the batch continues.
func runPropagateAll(opts *PropagateOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)

	cfg, err := loadConfig(formatter, opts.Config)
	if err != nil {
		return err
	}

	st, err := opts.StoreOptions.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := st.RecordIDs(ctx, opts.AllOf)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, "failed to list records", err.Error())
		return WrapExitError(ExitCommandError, ErrCodeDatabase, err)
	}

	field := opts.Field
	if field == "" {
		field = cfg.SubjectField
	}

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	reg := prometheus.NewRegistry()
	if opts.Metrics {
		obs, err := metrics.New(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
		engineOpts = append(engineOpts, engine.WithObserver(obs))
	}
	eng := engine.New(st, cfg, engineOpts...)

	out := BatchOutput{Type: opts.AllOf, Records: len(ids), Changed: []record.ID{}}
	for _, id := range ids {
		rec, err := st.Record(ctx, id)
		if err != nil {
			logger.Warn("record unreadable, skipped", "record", id, "error", err)
			out.Failed = append(out.Failed, id)
			continue
		}
		result, err := eng.Run(ctx, rec, field)
		if err != nil {
			logger.Warn("propagation failed", "record", id, "error", err)
			out.Failed = append(out.Failed, id)
		}
		if result != nil && result.Changed {
			out.Changed = append(out.Changed, id)
			formatter.VerboseLog("record %s updated", id)
		}
	}

	if opts.Metrics {
		if err := writeMetrics(formatter, reg); err != nil {
			return err
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%d %s record(s), %d updated, %d failed\n",
			out.Records, out.Type, len(out.Changed), len(out.Failed))
	}

	if len(out.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d record(s) failed", len(out.Failed)))
	}
	return nil
}

// loadConfig loads the configuration, reporting problems through formatter.
func loadConfig(formatter *OutputFormatter, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}

	var loadErr *config.LoadError
	if errors.As(err, &loadErr) {
		return nil, outputValidateLoadError(formatter, loadErr)
	}
	var compileErrs config.Errors
	if errors.As(err, &compileErrs) {
		return nil, outputValidationErrors(formatter, compileErrs)
	}
	return nil, WrapExitError(ExitCommandError, "failed to load config", err)
}

func outputPropagate(formatter *OutputFormatter, result *engine.Result, notices []string, rec *record.Record, runErr error) error {
	if formatter.Format == "json" {
		resp := CLIResponse{
			Status: "ok",
			RunID:  result.RunID,
			Data: PropagateOutput{
				Result:  result,
				Notices: notices,
				Fields:  rec.Values(),
			},
		}
		if runErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodePropagation, Message: runErr.Error()}
		}
		return encodeJSON(formatter.Writer, resp)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run: %s\n", result.RunID)
	fmt.Fprintf(w, "record: %s\n", result.RecordID)
	if result.Skipped != engine.SkipNone {
		fmt.Fprintf(w, "skipped: %s\n", result.Skipped)
		return nil
	}
	fmt.Fprintf(w, "subject: %s\n", result.Subject)
	for _, o := range result.Outcomes {
		fmt.Fprintf(w, "  %s\n", describeOutcome(o))
	}
	for _, n := range notices {
		fmt.Fprintf(w, "notice: %s\n", n)
	}
	if result.Changed {
		fmt.Fprintln(w, "✓ Record updated")
	} else {
		fmt.Fprintln(w, "No changes")
	}
	if runErr != nil {
		fmt.Fprintf(w, "Error [%s]: %v\n", ErrCodePropagation, runErr)
	}
	return nil
}

func describeOutcome(o engine.Outcome) string {
	target := o.Destination
	if o.Character != "" {
		target = fmt.Sprintf("%s [%s]", o.Destination, o.Character)
	}
	if o.Source != 0 {
		return fmt.Sprintf("%-20s %-24s %s (from %s)", o.Status, o.Rule, target, o.Source)
	}
	return fmt.Sprintf("%-20s %-24s %s", o.Status, o.Rule, target)
}

// writeMetrics prints the registry in the Prometheus text format on the
// diagnostic writer.
func writeMetrics(formatter *OutputFormatter, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to gather metrics", err)
	}
	w := formatter.GetErrWriter()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
