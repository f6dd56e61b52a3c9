package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name        string
		dest        string
		value       string
		onlyIfEmpty bool
		want        string
		decision    Decision
	}{
		{"empty destination is set", "", "私は食べる。", false, "私は食べる。", Set},
		{"whitespace destination is not empty", " \n", "v", true, " \n", Filled},
		{"whitespace destination is appended to", " ", "v", false, " <br><br>v", Appended},
		{"decomposed duplicate of composed value", "\u304c\u304f", "\u304b\u3099\u304f", false, "\u304c\u304f", Duplicate},
		{"composed duplicate of decomposed value", "x \u304b\u3099\u304f", "\u304c\u304f", false, "x \u304b\u3099\u304f", Duplicate},
		{"verbatim duplicate", "私は食べる。", "私は食べる。", false, "私は食べる。", Duplicate},
		{"contained duplicate", "a<br><br>b", "b", false, "a<br><br>b", Duplicate},
		{"append with separator", "a", "b", false, "a<br><br>b", Appended},
		{"only-if-empty keeps content", "a", "b", true, "a", Filled},
		{"duplicate wins over only-if-empty", "a", "a", true, "a", Duplicate},
		{"empty value never writes", "", "", false, "", Duplicate},
		{
			"self-closing variant is duplicate",
			`<img src="a.jpg">`, `<img src="a.jpg" />`, false,
			`<img src="a.jpg">`, Duplicate,
		},
		{
			"self-closing without space",
			`x<br>y`, `x<br/>y`, false,
			`x<br>y`, Duplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, decision := Merge(tt.dest, tt.value, tt.onlyIfEmpty)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.decision, decision)
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	dest := "first"
	for _, v := range []string{"second", `<img src="a.jpg" />`} {
		var d Decision
		dest, d = Merge(dest, v, false)
		assert.True(t, d.Writes())

		again, d2 := Merge(dest, v, false)
		assert.Equal(t, dest, again)
		assert.Equal(t, Duplicate, d2)
	}
}

func TestOpenSelfClosing(t *testing.T) {
	assert.Equal(t, `<img src="a.jpg">`, OpenSelfClosing(`<img src="a.jpg" />`))
	assert.Equal(t, `<br>`, OpenSelfClosing(`<br/>`))
	assert.Equal(t, `a < b />`, OpenSelfClosing(`a < b />`), "not a tag")
}

func TestDecision_Writes(t *testing.T) {
	assert.True(t, Set.Writes())
	assert.True(t, Appended.Writes())
	assert.False(t, Duplicate.Writes())
	assert.False(t, Filled.Writes())
	assert.Equal(t, "destination_filled", Filled.String())
}
