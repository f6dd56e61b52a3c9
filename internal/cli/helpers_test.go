package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/record"
	"github.com/roach88/fieldsync/internal/store"
)

const testConfigYAML = `subject_field: Expression
whole_text_rules:
  - source_field: Sentence
    destination_field: Sentence
    source_record_type: Vocab
    remove_pattern: '\[.*?\]'
character_rules:
  - source_field: Meaning
    source_record_type: Kanji
    destination_fields: [Kanji1, Kanji2]
    character_filter: ideographic
`

// testCollection is a seeded SQLite collection on disk.
type testCollection struct {
	dbPath     string
	configPath string
	cardID     record.ID
}

// seedCollection writes a database with a Vocab, a Kanji and a Card record
// and a matching configuration file.
func seedCollection(t *testing.T) testCollection {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "cards.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)

	require.NoError(t, st.AddModel(ctx, "Vocab", []string{"Word", "Sentence"}))
	require.NoError(t, st.AddModel(ctx, "Kanji", []string{"Kanji", "Meaning"}))
	require.NoError(t, st.AddModel(ctx, "Card", []string{"Expression", "Sentence", "Kanji1", "Kanji2"}))

	_, err = st.AddRecord(ctx, "Vocab", map[string]string{"Word": "食べる", "Sentence": "私は[ruby]食べる[/ruby]。"})
	require.NoError(t, err)
	_, err = st.AddRecord(ctx, "Kanji", map[string]string{"Kanji": "食", "Meaning": "eat"})
	require.NoError(t, err)
	cardID, err := st.AddRecord(ctx, "Card", map[string]string{"Expression": "食べる"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	configPath := filepath.Join(dir, "fieldsync.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigYAML), 0644))

	return testCollection{dbPath: dbPath, configPath: configPath, cardID: cardID}
}

// readRecord reopens the database and returns one record.
func readRecord(t *testing.T, dbPath string, id record.ID) *record.Record {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.Record(context.Background(), id)
	require.NoError(t, err)
	return rec
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
