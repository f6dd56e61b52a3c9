package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/record"
)

func TestLookup_ListsCandidatesInOrder(t *testing.T) {
	tc := seedCollection(t)

	cmd := NewLookupCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", tc.dbPath, "<b>食べる</b>")
	require.NoError(t, err)

	assert.Equal(t, "1\tVocab\n3\tCard\n", out)
}

func TestLookup_TypeFilterJSON(t *testing.T) {
	tc := seedCollection(t)

	cmd := NewLookupCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "--db", tc.dbPath, "--type", "Card", "食べる")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   LookupOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Matches, 1)
	assert.Equal(t, record.ID(3), resp.Data.Matches[0].ID)
	assert.Equal(t, "食べる", resp.Data.Matches[0].Fields["Expression"])
}

func TestLookup_CompleteFieldOnly(t *testing.T) {
	tc := seedCollection(t)

	cmd := NewLookupCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", tc.dbPath, "食べ")
	require.NoError(t, err)
	assert.Contains(t, out, `No records hold "食べ"`)
}

func TestLookup_RawAndEmpty(t *testing.T) {
	tc := seedCollection(t)

	cmd := NewLookupCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", tc.dbPath, "--raw", "私は[ruby]食べる[/ruby]。")
	require.NoError(t, err)
	assert.Equal(t, "1\tVocab\n", out)

	cmd = NewLookupCommand(&RootOptions{Format: "text"})
	_, _, err = execute(cmd, "--db", tc.dbPath, "<br>")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
