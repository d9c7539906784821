package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Value {
	t.Helper()
	v, err := ParseJSON([]byte(src))
	require.NoError(t, err, src)
	return v
}

func TestParseJSON_Kinds(t *testing.T) {
	tests := []struct {
		src  string
		kind Kind
	}{
		{"null", KindNull},
		{"true", KindBool},
		{"-12.5e3", KindNumber},
		{`"s"`, KindString},
		{"[1, 2]", KindArray},
		{`{"a": 1}`, KindObject},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, mustParse(t, tt.src).Kind, tt.src)
	}
}

func TestParseJSON_KeepsKeyOrder(t *testing.T) {
	v := mustParse(t, `{"zeta": 1, "alpha": {"y": 2, "b": 3}, "mid": []}`)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys)
	alpha, ok := v.Field("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, alpha.Keys)
}

func TestParseJSON_DuplicateKeyLastWins(t *testing.T) {
	v := mustParse(t, `{"a": 1, "b": 2, "a": 3}`)

	assert.Equal(t, []string{"a", "b"}, v.Keys)
	a, _ := v.Field("a")
	assert.Equal(t, "3", string(a.Number))
}

func TestParseJSON_Errors(t *testing.T) {
	for _, src := range []string{
		"",
		"{",
		`{"a": 1,}`,
		"{} {}",
		"[1] x",
		"// comment\n{}",
		"{a: 1}",
	} {
		_, err := ParseJSON([]byte(src))
		assert.Error(t, err, "input %q", src)
	}
}

func TestParseJSON_StripsBOM(t *testing.T) {
	v, err := ParseJSON(append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a": true}`)...))
	require.NoError(t, err)
	assert.Equal(t, KindObject, v.Kind)
}

func TestPrettyRendering(t *testing.T) {
	v := mustParse(t, `{"name":"<a&b>","list":[1,{"k":null}],"empty":{},"none":[],"flag":false}`)

	want := "{\n" +
		"  \"name\": \"<a&b>\",\n" +
		"  \"list\": [\n" +
		"    1,\n" +
		"    {\n" +
		"      \"k\": null\n" +
		"    }\n" +
		"  ],\n" +
		"  \"empty\": {},\n" +
		"  \"none\": [],\n" +
		"  \"flag\": false\n" +
		"}"
	assert.Equal(t, want, pretty(v, 0, "\n"))
}

func TestPretty_NestedDepth(t *testing.T) {
	v := mustParse(t, `[true]`)
	assert.Equal(t, "[\r\n      true\r\n    ]", pretty(v, 2, "\r\n"))
}

func TestPretty_NumbersKeepSourceSpelling(t *testing.T) {
	v := mustParse(t, `[1.50, 1e3, -0]`)
	assert.Equal(t, "[\n  1.50,\n  1e3,\n  -0\n]", pretty(v, 0, "\n"))
}
