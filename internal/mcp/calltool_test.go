package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hargabyte/bomcov/internal/config"
	"github.com/hargabyte/bomcov/internal/output"
)

const testReport = `Test Summary for U10 (MC14519)
  Totals: 39/40 97.50%
*U7 Units
  Vout PASS
Untested Devices
  R22 (COMPONENT IS TESTED IN PARALLEL WITH R21) NOTEST
  C5 (PMSG is not used)
General Summary Report
`

func newTestServer(t *testing.T, tools ...string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte(testReport), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bom.csv"), []byte("COMP.\nU10\nR22\nC5\nQ1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := New(Config{Tools: tools, WorkDir: dir, App: config.DefaultConfig()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, dir
}

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(AllTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(AllTools))
	}

	s, _ := newTestServer(t, ToolExtract)
	schemas := s.GetToolSchemas()
	if len(schemas) != 1 || schemas[0].Name != ToolExtract {
		t.Errorf("expected only the registered tool's schema, got %+v", schemas)
	}
}

func TestToolSchemaParameters(t *testing.T) {
	required := map[string][]string{
		ToolExtract:  nil,
		ToolClassify: nil,
		ToolAnnotate: {"report", "table"},
	}

	for tool, want := range required {
		var got []string
		for _, p := range toolSchemaRegistry[tool].Parameters {
			if p.Required {
				got = append(got, p.Name)
			}
		}
		sort.Strings(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tool %s required params mismatch (-want +got):\n%s", tool, diff)
		}
	}
}

func TestNew_UnknownTool(t *testing.T) {
	if _, err := New(Config{Tools: []string{"cx_show"}, WorkDir: t.TempDir(), App: config.DefaultConfig()}); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestCallTool_Extract(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.CallTool(context.Background(), ToolExtract, map[string]interface{}{"report": "report.txt"})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}

	var facts output.FactsOutput
	if err := json.Unmarshal([]byte(result), &facts); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, result)
	}
	if facts.Coverage["U10"] != "97.50%" {
		t.Errorf("expected U10 97.50%%, got %q", facts.Coverage["U10"])
	}
	if facts.Occurrences != nil {
		t.Error("medium density must not include occurrences")
	}
}

func TestCallTool_ExtractInlineText(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.CallTool(context.Background(), ToolExtract, map[string]interface{}{
		"text":    "Untested Devices\nC5 (PMSG is not used)\n",
		"density": "sparse",
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !strings.Contains(result, `"untested": 1`) {
		t.Errorf("expected untested count 1 in %s", result)
	}
}

func TestCallTool_Classify(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{
			name: "ids string",
			args: map[string]interface{}{"report": "report.txt", "ids": "U10, R22 C5"},
			want: []string{"OK", "SOUS_TEST", "NOTEST"},
		},
		{
			name: "ids array",
			args: map[string]interface{}{"report": "report.txt", "ids": []interface{}{"U7", "Q1"}},
			want: []string{"OK", "UNCLASSIFIED"},
		},
		{
			name: "table",
			args: map[string]interface{}{"report": "report.txt", "table": "bom.csv"},
			want: []string{"OK", "SOUS_TEST", "NOTEST", "UNCLASSIFIED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.CallTool(context.Background(), ToolClassify, tt.args)
			if err != nil {
				t.Fatalf("CallTool failed: %v", err)
			}
			var out output.ClassifyOutput
			if err := json.Unmarshal([]byte(result), &out); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			got := make([]string, len(out.Components))
			for i, c := range out.Components {
				got[i] = c.Status
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statuses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCallTool_Annotate(t *testing.T) {
	s, dir := newTestServer(t)

	result, err := s.CallTool(context.Background(), ToolAnnotate, map[string]interface{}{
		"table":  "bom.csv",
		"report": "report.txt",
		"output": "out.xlsx",
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}

	var job output.JobOutput
	if err := json.Unmarshal([]byte(result), &job); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if job.Output != filepath.Join(dir, "out.xlsx") {
		t.Errorf("unexpected output path %s", job.Output)
	}
	if job.Summary == nil || job.Summary.Total != 4 {
		t.Errorf("unexpected summary %+v", job.Summary)
	}
	if _, err := os.Stat(job.Output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestCallTool_Errors(t *testing.T) {
	s, _ := newTestServer(t, ToolExtract, ToolClassify, ToolAnnotate)
	limited, _ := newTestServer(t, ToolExtract)

	tests := []struct {
		name   string
		server *Server
		tool   string
		args   map[string]interface{}
	}{
		{"unregistered tool", limited, ToolAnnotate, map[string]interface{}{"table": "bom.csv", "report": "report.txt"}},
		{"extract without report", s, ToolExtract, map[string]interface{}{}},
		{"bad density", s, ToolExtract, map[string]interface{}{"report": "report.txt", "density": "smart"}},
		{"classify without ids", s, ToolClassify, map[string]interface{}{"report": "report.txt"}},
		{"annotate without table", s, ToolAnnotate, map[string]interface{}{"report": "report.txt"}},
		{"missing report file", s, ToolExtract, map[string]interface{}{"report": "nope.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.server.CallTool(context.Background(), tt.tool, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAllToolsMatchesRegistry(t *testing.T) {
	registryNames := make([]string, 0, len(toolSchemaRegistry))
	for name := range toolSchemaRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)

	allToolsCopy := make([]string, len(AllTools))
	copy(allToolsCopy, AllTools)
	sort.Strings(allToolsCopy)

	if diff := cmp.Diff(registryNames, allToolsCopy); diff != "" {
		t.Errorf("registry and AllTools differ (-registry +AllTools):\n%s", diff)
	}
}

func TestTimeoutChecker(t *testing.T) {
	s, _ := newTestServer(t)
	s.timeout = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.timeoutChecker(ctx, cancel, 1)
		close(done)
	}()

	<-done
	if ctx.Err() == nil {
		t.Error("expected the idle server to be cancelled")
	}
}
