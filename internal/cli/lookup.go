package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/record"
	"github.com/roach88/fieldsync/internal/textnorm"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	StoreOptions
	Type string
	Raw  bool
}

// LookupMatch is one record holding the searched text as a complete field value.
type LookupMatch struct {
	ID     record.ID         `json:"id"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

// LookupOutput is the payload of the lookup command.
type LookupOutput struct {
	Text    string        `json:"text"`
	Matches []LookupMatch `json:"matches"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <text>",
		Short: "List records holding text as a complete field value",
		Long: `List the records the engine would consider as reference records for text,
in collection order. The text is normalized like a subject field unless --raw
is given. With --type, only records of that type are listed; the first one
listed is the record a rule with that source type would copy from.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args[0], cmd)
		},
	}

	opts.StoreOptions.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Type, "type", "", "only list records of this type")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "search the text as given, without normalization")

	return cmd
}

func runLookup(opts *LookupOptions, text string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if !opts.Raw {
		text = textnorm.Normalize(text)
	}
	if text == "" {
		return NewExitError(ExitCommandError, "search text is empty")
	}

	st, err := opts.StoreOptions.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := st.FindByField(ctx, text)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, "lookup failed", err.Error())
		return WrapExitError(ExitCommandError, ErrCodeDatabase, err)
	}
	formatter.VerboseLog("%d candidate(s) for %q", len(ids), text)

	out := LookupOutput{Text: text, Matches: []LookupMatch{}}
	for _, id := range ids {
		rec, err := st.Record(ctx, id)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, fmt.Sprintf("failed to read record %s", id), err.Error())
			return WrapExitError(ExitCommandError, ErrCodeDatabase, err)
		}
		if opts.Type != "" && rec.Type != opts.Type {
			continue
		}
		out.Matches = append(out.Matches, LookupMatch{ID: rec.ID, Type: rec.Type, Fields: rec.Values()})
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	if len(out.Matches) == 0 {
		fmt.Fprintf(w, "No records hold %q\n", text)
		return nil
	}
	for _, m := range out.Matches {
		fmt.Fprintf(w, "%s\t%s\n", m.ID, m.Type)
	}
	return nil
}

// encodeJSON writes v as indented JSON.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
