package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "github.com/apokryfos/Enumerable/errors"
)

// execute runs the command with a quiet config and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(cfgPath, []byte("logging:\n  level: error\n  format: json\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	people := `[
		{"name": "Ann", "age": 31},
		{"name": "Bob", "age": 25},
		{"name": "Cid", "age": 40}
	]`

	tests := []struct {
		name  string
		input string
		ops   []string
		want  string
	}{
		{"no ops", `[1,2,3]`, nil, `[1,2,3]`},
		{"chunk", `["a","b","c"]`, []string{"chunk:2"}, `[["a","b"],{"2":"c"}]`},
		{"skip take", `[1,2,3,4,5]`, []string{"skip:1", "take:2"}, `{"1":2,"2":3}`},
		{"where pluck implode", people, []string{"where:age,>,30", "pluck:name", "implode:-"}, `"Ann-Cid"`},
		{"sum by key", people, []string{"sum:age"}, `96`},
		{"median", `[3,2,1]`, []string{"median"}, `2`},
		{"count", `{"a":1,"b":2}`, []string{"count"}, `2`},
		{"flip", `{"a":"x","b":"y"}`, []string{"flip"}, `{"x":"a","y":"b"}`},
		{"merge json operand", `[1,2]`, []string{"merge:[3,4]"}, `[1,2,3,4]`},
		{"quoted separator", `["a","b"]`, []string{`implode:", "`}, `"a, b"`},
		{"first missing", `[]`, []string{"first"}, `null`},
		{"values after filter", `[0,1,0,2]`, []string{"filter", "values"}, `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]string, 0, 2*len(tt.ops))
			for _, op := range tt.ops {
				args = append(args, "--op", op)
			}
			out, _, err := execute(t, tt.input, args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRun_YAMLInput(t *testing.T) {
	input := "b: 2\na: 1\n"
	out, _, err := execute(t, input, "--format", "yaml", "--op", "keys")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out); got != `["b","a"]` {
		t.Errorf("got %s, want [\"b\",\"a\"]", got)
	}
}

func TestRun_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(path, []byte(`[4,5,6]`), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out, _, err := execute(t, "", "-i", path, "--op", "max")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "6" {
		t.Errorf("got %s, want 6", got)
	}
}

func TestRun_Metrics(t *testing.T) {
	_, stderr, err := execute(t, `[1,2,3]`, "--metrics", "--op", "sum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `enumerable_pipeline_terminals_total{operation="sum",status="ok"} 1`
	if !strings.Contains(stderr, want) {
		t.Errorf("metrics output missing %q:\n%s", want, stderr)
	}
	if !strings.Contains(stderr, `enumerable_pipeline_elements_total{operation="sum"} 3`) {
		t.Errorf("metrics output missing element count:\n%s", stderr)
	}
}

func TestRun_Pretty(t *testing.T) {
	out, _, err := execute(t, `{"a":1}`, "--pretty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("expected indented output, got %q", out)
	}
}

func TestRun_JSONErrors(t *testing.T) {
	_, stderr, err := execute(t, `[]`, "--json-errors", "--op", "average")
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.As(err, new(reportedError)) {
		t.Errorf("expected a reported error, got %T", err)
	}
	var resp apperrors.ErrorResponse
	if jerr := json.Unmarshal([]byte(stderr), &resp); jerr != nil {
		t.Fatalf("stderr is not JSON: %v (%q)", jerr, stderr)
	}
	if resp.Error.Code != apperrors.ErrCodeEmptySequence {
		t.Errorf("got code %s, want EMPTY_SEQUENCE", resp.Error.Code)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		args    []string
		wantErr string
	}{
		{"unknown op", `[]`, []string{"--op", "shuffle"}, `unknown operation "shuffle"`},
		{"terminal not last", `[]`, []string{"--op", "count", "--op", "take:1"}, "must be the last operation"},
		{"arity", `[]`, []string{"--op", "take"}, "take arguments: must be at least 1"},
		{"bad int", `[]`, []string{"--op", "take:x"}, "take: argument 1"},
		{"bad json", `[1,`, nil, "decode json"},
		{"too many args", `[]`, []string{"--op", "take:1,2"}, "take arguments: must be at most 1"},
		{"bad format", `[]`, []string{"--format", "csv"}, "format: must be one of: json, yaml"},
		{"empty input path", `[]`, []string{"--input", ""}, "input: is required"},
		{"bad id", `[]`, []string{"--id", "nope"}, "id: must be a valid UUID"},
		{"nth zero", `[1,2]`, []string{"--op", "nth:0", "--op", "count"}, "ARITHMETIC_ERROR"},
		{"average of empty", `[]`, []string{"--op", "average"}, "EMPTY_SEQUENCE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.input, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRun_ID(t *testing.T) {
	if _, _, err := execute(t, `[1]`, "--id", uuid.NewString(), "--op", "count"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "enumerate dev") {
		t.Errorf("got %q", out)
	}
}

func TestOpsCommand(t *testing.T) {
	out, _, err := execute(t, "", "ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"chunk:N", "where:KEY[,OP],VALUE", "median[:KEY]"} {
		if !strings.Contains(out, want) {
			t.Errorf("ops output missing %q", want)
		}
	}
}
