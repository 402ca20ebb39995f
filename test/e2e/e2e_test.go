package e2e_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binary string

// TestMain builds the pytyper binary once for every end-to-end test.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "pytyper-e2e-bin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating temp dir: %v\n", err)
		os.Exit(1)
	}

	binary = filepath.Join(dir, "pytyper")
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}
	build := exec.Command("go", "build", "-o", binary, "../..")
	if output, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "building pytyper: %v\n%s\n", err, output)
		_ = os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// runPytyper runs the binary from dir with stdin and returns stdout,
// stderr and the exit error.
func runPytyper(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(stdin)
	// Keep the developer's environment out of the run.
	cmd.Env = append(os.Environ(), "PYTYPER_STYLE=", "PYTYPER_SELECT=", "PYTYPER_LOG_FILE=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_ComplexNestedStructures tests the application with complex nested JSON structures
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"id": 12345,
		"created_at": "2023-05-20T14:56:23Z",
		"updated_at": null,
		"config": {
			"enabled": true,
			"features": ["logging", "metrics", "alerting"],
			"rate_limits": {
				"per_second": 100,
				"burst": 150
			}
		},
		"users": [
			{
				"id": 1,
				"name": "Alice",
				"roles": ["admin", "user"],
				"metadata": {"last_login": "2023-05-19T10:30:00Z", "login_count": 42}
			},
			{
				"id": 2,
				"name": "Bob",
				"roles": ["user"],
				"metadata": {"last_login": "2023-05-18T09:15:00Z", "login_count": 17}
			}
		],
		"stats": {
			"success_rate": 0.9999,
			"response_times": [0.045, 0.067]
		},
		"active": true
	}`

	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))
	outputFile := filepath.Join(tempDir, "complex_models.py")

	_, stderr, err := runPytyper(t, tempDir, "", "-i", jsonFile, "-o", outputFile)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stderr, "written to")

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	code := string(content)

	expected := []string{
		"from pydantic import BaseModel, Field\n",
		"class Rate_limits(BaseModel):\n    per_second: float = Field()\n    burst: float = Field()\n",
		"class Config(BaseModel):\n    enabled: bool = Field()\n    features: List[str] = Field(default_factory=list)\n    rate_limits: Rate_limits = Field()\n",
		"class Metadata(BaseModel):\n    last_login: str = Field()\n    login_count: float = Field()\n",
		"class UsersItem(BaseModel):\n",
		"    metadata: Metadata = Field()\n",
		"class Stats(BaseModel):\n    success_rate: float = Field()\n    response_times: List[float] = Field(default_factory=list)\n",
		"    updated_at: Optional[Any] = Field(default=None)\n",
		"    users: List[UsersItem] = Field(default_factory=list)\n",
	}
	for _, snippet := range expected {
		assert.Contains(t, code, snippet)
	}

	// Root is emitted once, last.
	assert.Equal(t, 1, strings.Count(code, "class Root(BaseModel):"))
	assert.Greater(t, strings.Index(code, "class Root("), strings.Index(code, "class Stats("))
	assert.True(t, strings.HasSuffix(code, "    active: bool = Field()\n"))
}

func TestEndToEnd_Stdin(t *testing.T) {
	stdout, stderr, err := runPytyper(t, t.TempDir(), `{"node":{"value":1}}`, "--style", "terse")
	require.NoError(t, err, "stderr: %s", stderr)

	assert.Equal(t, "from pydantic import BaseModel\n"+
		"from typing import Optional, List, Dict, Any\n"+
		"\n"+
		"class Node(BaseModel):\n"+
		"    value: float\n"+
		"\n"+
		"class Root(BaseModel):\n"+
		"    node: Node\n", stdout)
}

func TestEndToEnd_Deterministic(t *testing.T) {
	dir := t.TempDir()
	input := `{"b":[{"x":null}],"a":{"y":[[1]]},"c":"z"}`

	first, _, err := runPytyper(t, dir, input)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, _, err := runPytyper(t, dir, input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEndToEnd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := "style: terse\n" +
		"naming:\n  pascal_case_classes: true\n" +
		"types:\n  detect_integers: true\n" +
		"output:\n  file_header: Generated by pytyper\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pytyper.yml"), []byte(config), 0644))

	stdout, stderr, err := runPytyper(t, dir, `{"user_profile":{"age":30,"height":1.8}}`)
	require.NoError(t, err, "stderr: %s", stderr)

	assert.True(t, strings.HasPrefix(stdout, "# Generated by pytyper\n\nfrom pydantic import BaseModel\n"))
	assert.Contains(t, stdout, "class UserProfile(BaseModel):\n    age: int\n    height: float\n")
	assert.Contains(t, stdout, "    user_profile: UserProfile\n")
}

func TestEndToEnd_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pytyper.yml"), []byte("style: fancy\n"), 0644))

	stdout, stderr, err := runPytyper(t, dir, `{}`)
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Configuration error")
}

func TestEndToEnd_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PYTYPER_SELECT=.payload\n"), 0644))

	cmd := exec.Command(binary, "-s", "terse")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PYTYPER_STYLE=", "PYTYPER_LOG_FILE=")
	cmd.Stdin = strings.NewReader(`{"payload":{"ok":true},"noise":1}`)
	out, err := cmd.Output()
	require.NoError(t, err)

	assert.Contains(t, string(out), "class Root(BaseModel):\n    ok: bool\n")
	assert.NotContains(t, string(out), "noise")
}

func TestEndToEnd_Batch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "models")
	for name, content := range map[string]string{
		"user.json":  `{"name":"Ada"}`,
		"order.json": `[{"id":1}]`,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	_, stderr, err := runPytyper(t, dir, "", "batch", "-O", outDir, "-w", "2",
		filepath.Join(dir, "user.json"), filepath.Join(dir, "order.json"))
	require.NoError(t, err, "stderr: %s", stderr)

	user, err := os.ReadFile(filepath.Join(outDir, "user.py"))
	require.NoError(t, err)
	assert.Contains(t, string(user), "    name: str = Field()\n")

	order, err := os.ReadFile(filepath.Join(outDir, "order.py"))
	require.NoError(t, err)
	assert.Contains(t, string(order), "    data: List[ImageDataItem] = Field(default_factory=list)\n")
}

func TestEndToEnd_ConfigSchema(t *testing.T) {
	stdout, _, err := runPytyper(t, t.TempDir(), "", "config-schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"pascal_case_classes"`)
	assert.Contains(t, stdout, `"additionalProperties": false`)
}

func TestEndToEnd_Version(t *testing.T) {
	stdout, _, err := runPytyper(t, t.TempDir(), "", "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pytyper version")
}

func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name        string
		json        string
		expectError bool
		errorText   string
		contains    []string
	}{
		{
			name:     "Empty object",
			json:     `{}`,
			contains: []string{"class Root(BaseModel):\n    pass\n"},
		},
		{
			name:     "Empty array at root",
			json:     `[]`,
			contains: []string{"    data: List[Any] = Field(default_factory=list)\n"},
		},
		{
			name:     "Scalar root",
			json:     `"just a string"`,
			contains: []string{"    value: str = Field()\n"},
		},
		{
			name:     "Special characters in keys",
			json:     `{"special-key": "value", "key.with.dots": 1, "key with spaces": true}`,
			contains: []string{"    special_key: str = Field()\n", "    key_with_dots: float = Field()\n", "    key_with_spaces: bool = Field()\n"},
		},
		{
			name:     "Unicode values",
			json:     `{"unicode": "こんにちは", "emoji": "😀"}`,
			contains: []string{"    unicode: str = Field()\n", "    emoji: str = Field()\n"},
		},
		{
			name:        "Malformed JSON",
			json:        `{bad json`,
			expectError: true,
			errorText:   "JSON parsing error",
		},
		{
			name:        "Empty input",
			json:        "   ",
			expectError: true,
			errorText:   "JSON parsing error",
		},
		{
			name:        "Multiple documents",
			json:        `{"a":1}{"b":2}`,
			expectError: true,
			errorText:   "multiple JSON values",
		},
		{
			name:        "Too deep",
			json:        strings.Repeat("[", 600) + strings.Repeat("]", 600),
			expectError: true,
			errorText:   "Nesting error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runPytyper(t, t.TempDir(), tc.json)

			if tc.expectError {
				require.Error(t, err)
				assert.Empty(t, stdout, "no code is written on failure")
				assert.Contains(t, stderr, tc.errorText)
				return
			}

			require.NoError(t, err, "stderr: %s", stderr)
			for _, snippet := range tc.contains {
				assert.Contains(t, stdout, snippet)
			}
		})
	}
}
