package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/config"
	"github.com/go-drift/scrollwatch/pkg/diagnostics"
	"github.com/go-drift/scrollwatch/pkg/errors"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

const sceneYAML = `
version: v1.0.0
log:
  level: debug
scene:
  viewport: 600
  nodes:
    - height: 5000
    - id: hero
      top: 900
      height: 100
  watchers:
    - name: hero
      target: "#hero"
  script:
    - scroll: 500
`

// capture redirects the command output for the duration of the test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() {
		stdout, stderr = prevOut, prevErr
		errors.SetHandler(nil)
	})
	return out, errOut
}

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte(sceneYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgs(t *testing.T) {
	valued := []string{"-c", "--config", "--addr", "--log-file"}
	switches := []string{"--json"}
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{"empty", nil, options{}, false},
		{"short config", []string{"-c", "a.yaml"}, options{configPath: "a.yaml"}, false},
		{"inline config", []string{"--config=b.yaml"}, options{configPath: "b.yaml"}, false},
		{"addr and json", []string{"--addr", ":0", "--json"}, options{addr: ":0", json: true}, false},
		{"positional", []string{"notes.txt", "--log-file", "x.log"}, options{logFile: "x.log", args: []string{"notes.txt"}}, false},
		{"missing value", []string{"-c"}, options{}, true},
		{"unknown flag", []string{"--verbose"}, options{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, valued, switches)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArgs(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(options{})); diff != "" {
				t.Errorf("parseArgs(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	out, errOut := capture(t)

	if err := Execute([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "scrollwatch version "+Version) {
		t.Errorf("version output = %q", out.String())
	}

	out.Reset()
	if err := Execute(nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"simulate", "serve", "tui"} {
		if !strings.Contains(out.String(), "  "+name) {
			t.Errorf("help does not list %s", name)
		}
	}

	if err := Execute([]string{"bogus"}); err == nil {
		t.Error("Execute(bogus) succeeded")
	}
	if !strings.Contains(errOut.String(), `unknown command "bogus"`) {
		t.Errorf("stderr = %q", errOut.String())
	}

	out.Reset()
	if err := Execute([]string{"simulate", "--help"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "scrollwatch simulate [-c file]") {
		t.Errorf("command help = %q", out.String())
	}
}

func TestSimulate(t *testing.T) {
	out, _ := capture(t)
	logFile := filepath.Join(t.TempDir(), "scrollwatch.log")

	if err := Execute([]string{"simulate", "-c", writeScene(t), "--log-file", logFile}); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	var got []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		f := strings.Fields(line)
		got = append(got, f[1]+" "+f[2])
	}
	want := []string{
		"hero enter-viewport",
		"hero fully-enter-viewport",
		"hero visibility-change",
		"hero state-change",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("simulate output mismatch (-want +got):\n%s", diff)
	}

	logs, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(logs), "step") {
		t.Errorf("debug log does not mention the script steps:\n%s", logs)
	}
}

func TestSimulateJSON(t *testing.T) {
	out, _ := capture(t)
	if err := Execute([]string{"simulate", "--config=" + writeScene(t), "--json", "--log-file", os.DevNull}); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	var records []diagnostics.Record
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("output is not a record array: %v\n%s", err, out.String())
	}
	var kinds []scroll.Event
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	want := []scroll.Event{scroll.EnterViewport, scroll.FullyEnterViewport, scroll.VisibilityChange, scroll.StateChange}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if records[0].Target != "#hero" || records[0].Top != 900 {
		t.Errorf("first record = %+v", records[0])
	}
}

func TestSimulateErrors(t *testing.T) {
	capture(t)
	if err := Execute([]string{"simulate", "extra"}); err == nil {
		t.Error("simulate accepted a positional argument")
	}
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if err := Execute([]string{"simulate", "-c", missing}); !errors.IsKind(err, errors.KindConfig) {
		t.Errorf("simulate with a missing file = %v, want a config error", err)
	}
}

func TestResolveConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, path, err := resolveConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if path != "" || cfg.Scene.Viewport != config.Default().Scene.Viewport {
		t.Errorf("resolveConfig() = %q, %+v, want the defaults", path, cfg.Scene)
	}

	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(sceneYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, sub)
	cfg, path, err = resolveConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != config.FileName || cfg.Scene.Viewport != 600 {
		t.Errorf("resolveConfig() = %q, viewport %v", path, cfg.Scene.Viewport)
	}
}

func TestServe(t *testing.T) {
	out, _ := capture(t)
	cfg, err := config.Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := serve(ctx, cfg.Scene, 0, "127.0.0.1:0", zap.NewNop()); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !strings.Contains(out.String(), "Serving diagnostics on port") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestWatchText(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()

	text := "#intro hello\nplain\n#usage run it\n#intro again\n"
	doc, root, err := watchText(screen, text, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer root.Destroy()

	var got []string
	for _, el := range root.Elements() {
		got = append(got, el.Target().(interface{ String() string }).String())
	}
	if diff := cmp.Diff([]string{"#intro", "#usage"}, got); diff != "" {
		t.Errorf("watched lines mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Lines()) != 4 {
		t.Errorf("len(Lines()) = %d, want 4", len(doc.Lines()))
	}
}

// chdir changes the working directory for the rest of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
