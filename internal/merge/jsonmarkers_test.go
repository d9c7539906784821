package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func markJSON(t *testing.T, current, shelved string) string {
	t.Helper()
	cur, shv := mustParse(t, current), mustParse(t, shelved)
	return BuildJSONMarkers(current, cur, shv, FindConflicts(cur, shv), "X", "\n")
}

func TestBuildJSONMarkers_ChangedMember(t *testing.T) {
	want := "{\n" +
		"  <<<<<<< Current Workspace\n" +
		"  \"x\": 1\n" +
		"  =======\n" +
		"  \"x\": 2\n" +
		"  >>>>>>> Shelf: X\n" +
		"}\n"
	assert.Equal(t, want, markJSON(t, `{"x":1}`, `{"x":2}`))
}

func TestBuildJSONMarkers_NoConflictsReturnsCurrentText(t *testing.T) {
	current := "{ \"a\" :1,\n\"b\":[ ] }"
	assert.Equal(t, current, markJSON(t, current, `{"b": [], "a": 1.0}`))
}

func TestBuildJSONMarkers_MissingSideIsDeleted(t *testing.T) {
	t.Run("member only on shelf", func(t *testing.T) {
		want := "{\n" +
			"  \"a\": 1,\n" +
			"  <<<<<<< Current Workspace\n" +
			"  (deleted)\n" +
			"  =======\n" +
			"  \"b\": 2\n" +
			"  >>>>>>> Shelf: X\n" +
			"}\n"
		assert.Equal(t, want, markJSON(t, `{"a":1}`, `{"a":1,"b":2}`))
	})

	t.Run("member only in workspace", func(t *testing.T) {
		want := "{\n" +
			"  <<<<<<< Current Workspace\n" +
			"  \"gone\": true,\n" +
			"  =======\n" +
			"  (deleted)\n" +
			"  >>>>>>> Shelf: X\n" +
			"  \"kept\": 1\n" +
			"}\n"
		assert.Equal(t, want, markJSON(t, `{"gone":true,"kept":1}`, `{"kept":1}`))
	})

	t.Run("element only on shelf", func(t *testing.T) {
		want := "[\n" +
			"  1,\n" +
			"  <<<<<<< Current Workspace\n" +
			"  (deleted)\n" +
			"  =======\n" +
			"  {\n" +
			"    \"k\": true\n" +
			"  }\n" +
			"  >>>>>>> Shelf: X\n" +
			"]\n"
		assert.Equal(t, want, markJSON(t, `[1]`, `[1,{"k":true}]`))
	})
}

func TestBuildJSONMarkers_NestedDepth(t *testing.T) {
	want := "{\n" +
		"  \"a\": {\n" +
		"    \"b\": 1,\n" +
		"    <<<<<<< Current Workspace\n" +
		"    \"c\": 2\n" +
		"    =======\n" +
		"    \"c\": 3\n" +
		"    >>>>>>> Shelf: X\n" +
		"  },\n" +
		"  \"list\": [],\n" +
		"  \"obj\": {}\n" +
		"}\n"
	assert.Equal(t, want, markJSON(t,
		`{"a":{"b":1,"c":2},"list":[],"obj":{}}`,
		`{"a":{"b":1,"c":3},"list":[],"obj":{}}`))
}

func TestBuildJSONMarkers_SubtreeConflict(t *testing.T) {
	want := "{\n" +
		"  <<<<<<< Current Workspace\n" +
		"  \"paths\": [\n" +
		"    \"src\"\n" +
		"  ]\n" +
		"  =======\n" +
		"  \"paths\": {\n" +
		"    \"src\": true\n" +
		"  }\n" +
		"  >>>>>>> Shelf: X\n" +
		"}\n"
	assert.Equal(t, want, markJSON(t, `{"paths":["src"]}`, `{"paths":{"src":true}}`))
}

func TestBuildJSONMarkers_RootConflict(t *testing.T) {
	want := "<<<<<<< Current Workspace\n" +
		"[\n" +
		"  1\n" +
		"]\n" +
		"=======\n" +
		"{\n" +
		"  \"a\": 1\n" +
		"}\n" +
		">>>>>>> Shelf: X\n"
	assert.Equal(t, want, markJSON(t, `[1]`, `{"a":1}`))
}

func TestBuildJSONMarkers_CRLF(t *testing.T) {
	cur, shv := mustParse(t, `{"v":1}`), mustParse(t, `{"v":2}`)
	got := BuildJSONMarkers("", cur, shv, FindConflicts(cur, shv), "X", "\r\n")

	want := "{\r\n" +
		"  <<<<<<< Current Workspace\r\n" +
		"  \"v\": 1\r\n" +
		"  =======\r\n" +
		"  \"v\": 2\r\n" +
		"  >>>>>>> Shelf: X\r\n" +
		"}\r\n"
	assert.Equal(t, want, got)
}
