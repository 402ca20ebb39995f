package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/pytyper/internal/config"
	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/models"
)

func TestParseString_Scalars(t *testing.T) {
	tests := []struct {
		input string
		kind  models.Kind
		text  string
		b     bool
	}{
		{`"hello"`, models.String, "hello", false},
		{`"esc\"aped\n"`, models.String, "esc\"aped\n", false},
		{`42`, models.Number, "42", false},
		{`-1.5e3`, models.Number, "-1.5e3", false},
		{`true`, models.Bool, "", true},
		{`false`, models.Bool, "", false},
		{`null`, models.Null, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ir, err := ParseString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ir.Root.Kind)
			assert.Equal(t, tt.text, ir.Root.Text)
			assert.Equal(t, tt.b, ir.Root.Bool)
		})
	}
}

func TestParseString_ObjectKeepsKeyOrder(t *testing.T) {
	ir, err := ParseString(`{"zeta": 1, "alpha": {"y": true, "b": null}, "mid": [1, "two"]}`)
	require.NoError(t, err)

	root := ir.Root
	require.Equal(t, models.Object, root.Kind)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, root.Keys())

	alpha, ok := root.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, alpha.Keys())

	mid, ok := root.Get("mid")
	require.True(t, ok)
	require.Len(t, mid.Items, 2)
	assert.Equal(t, models.Number, mid.Items[0].Kind)
	assert.Equal(t, models.String, mid.Items[1].Kind)
	assert.Equal(t, "two", mid.Items[1].Text)
}

func TestParseString_DuplicateKeys(t *testing.T) {
	ir, err := ParseString(`{"a": 1, "b": 2, "a": "last"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ir.Root.Keys())
	a, _ := ir.Root.Get("a")
	assert.Equal(t, models.String, a.Kind)
	assert.Equal(t, "last", a.Text)
}

func TestParseString_EscapedKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keys  []string
	}{
		{"quotes and utf8", `{"say \"hi\"": 1, "café": 2}`, []string{`say "hi"`, "café"}},
		{"escaped backslash", `{"a\\q": 1}`, []string{`a\q`}},
		{"escaped backslash before u", `{"x\\u0041": 1}`, []string{`x\u0041`}},
		{"unicode escape", `{"x\u0041": 1}`, []string{"xA"}},
		{"escaped slash", `{"a\/b": 1}`, []string{"a/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir, err := ParseString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.keys, ir.Root.Keys())
		})
	}
}

func TestParseString_RootArray(t *testing.T) {
	ir, err := ParseString(`[{"id": 1}, {"id": 2}]`)
	require.NoError(t, err)
	assert.Equal(t, models.Array, ir.Root.Kind)
	assert.Len(t, ir.Root.Items, 2)
}

func TestParseString_EmptyContainers(t *testing.T) {
	ir, err := ParseString(`{"list": [], "obj": {}}`)
	require.NoError(t, err)

	list, _ := ir.Root.Get("list")
	assert.Equal(t, models.Array, list.Kind)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)

	obj, _ := ir.Root.Get("obj")
	assert.Equal(t, models.Object, obj.Kind)
	assert.Equal(t, 0, obj.Len())
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		contains string
	}{
		{"empty", "", errors.ErrEmptyInput, "empty"},
		{"whitespace", "  \n\t ", errors.ErrEmptyInput, "empty"},
		{"malformed", "{bad json", errors.ErrInvalidJSON, "offset"},
		{"truncated", `{"a": 1`, errors.ErrInvalidJSON, "end of JSON"},
		{"trailing comma", `{"a": 1,}`, errors.ErrInvalidJSON, "syntax error"},
		{"multiple values", `{"a": 1} {"b": 2}`, errors.ErrMultipleJSON, "multiple"},
		{"trailing garbage", `{"a": 1} }`, errors.ErrInvalidJSON, "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsParseError(err))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseBytes_TrailingWhitespaceAllowed(t *testing.T) {
	_, err := ParseBytes([]byte("{\"a\": 1}\n\n  "), Options{})
	require.NoError(t, err)
}

func TestParseBytes_Repair(t *testing.T) {
	input := []byte(`{name: 'Ada', "tags": ["x", "y",],}`)

	_, err := ParseBytes(input, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))

	ir, err := ParseBytes(input, Options{Repair: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "tags"}, ir.Root.Keys())
	name, _ := ir.Root.Get("name")
	assert.Equal(t, "Ada", name.Text)
}

func TestParseBytes_DepthGuard(t *testing.T) {
	deep := strings.Repeat(`{"a":`, 20) + "1" + strings.Repeat("}", 20)

	_, err := ParseBytes([]byte(deep), Options{MaxDepth: 10})
	require.Error(t, err)
	assert.True(t, errors.IsDepthExceeded(err))
	assert.ErrorIs(t, err, errors.ErrDepthExceeded)

	_, err = ParseBytes([]byte(deep), Options{MaxDepth: 20})
	require.NoError(t, err)
}

func TestParseBytes_DecoderDepthLimit(t *testing.T) {
	depth := config.MaxDepthLimit * 2
	deep := strings.Repeat("[", depth) + strings.Repeat("]", depth)

	tests := []struct {
		name string
		opts Options
	}{
		{"default", Options{}},
		{"at the configurable maximum", Options{MaxDepth: config.MaxDepthLimit}},
		{"with repair", Options{Repair: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(deep), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsDepthExceeded(err))
			assert.False(t, errors.IsParseError(err))
			assert.ErrorIs(t, err, errors.ErrDepthExceeded)
		})
	}
}

func TestParseBytes_DefaultDepthGuard(t *testing.T) {
	deep := strings.Repeat("[", 600) + strings.Repeat("]", 600)

	_, err := ParseBytes([]byte(deep), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsDepthExceeded(err))
}

func TestParse_Reader(t *testing.T) {
	ir, err := Parse(strings.NewReader(`{"k": "v"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, ir.Root.Keys())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"id": 7}`), 0644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	ir, err := ParseFile(valid, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, ir.Root.Keys())

	_, err = ParseFile(filepath.Join(dir, "missing.json"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFileNotFound)

	_, err = ParseFile(empty, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFileEmpty)

	_, err = ParseFile("  ", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidFilePath)
}
