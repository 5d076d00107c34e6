package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/phitop/internal/config"
	"github.com/san-kum/phitop/internal/report"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(append(args, "--log-level", "error"))
	root.SetOut(os.Stderr)
	return root.Execute()
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "in.yaml")
	if err := os.WriteFile(file, []byte("dt: 0.002\nphysics:\n  friction: 0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.yaml")

	err := execute(t, "config", "init", out,
		"--preset", "slow",
		"--config", file,
		"--dt", "0.0005")
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 10 {
		t.Errorf("duration %g should come from the preset", cfg.Duration)
	}
	if cfg.Physics.Friction != 0.1 {
		t.Errorf("friction %g should come from the file", cfg.Physics.Friction)
	}
	if cfg.Dt != 0.0005 {
		t.Errorf("dt %g should come from the flag", cfg.Dt)
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("integrator %q changed without a flag", cfg.Integrator)
	}

	if err := execute(t, "config", "init", out); err == nil {
		t.Error("expected error when the file exists")
	}
}

func TestUnknownPreset(t *testing.T) {
	err := execute(t, "run", "--preset", "cube", "--out", filepath.Join(t.TempDir(), "x"))
	if err == nil || !strings.Contains(err.Error(), "unknown preset") {
		t.Errorf("expected unknown preset error, got %v", err)
	}
}

func TestRunCommand_JSONAndSVG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "run.json")
	track := filepath.Join(dir, "track.svg")
	frame := filepath.Join(dir, "frame.svg")

	err := execute(t, "run",
		"--duration", "0.01",
		"--integrator", "heun",
		"--format", "json",
		"--out", out,
		"--svg", track)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc report.Run
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Integrator != "heun" || doc.Steps != 10 {
		t.Errorf("unexpected run document: %+v", doc)
	}

	svg, err := os.ReadFile(track)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<path") {
		t.Error("track SVG has no path")
	}

	err = execute(t, "run", "--duration", "0.01", "--format", "json",
		"--out", filepath.Join(dir, "again.json"),
		"--svg", frame, "--svg-at", "0.005")
	if err != nil {
		t.Fatal(err)
	}
	svg, err = os.ReadFile(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<circle") {
		t.Error("frame SVG has no dots")
	}
}

func TestRunCommand_Text(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.txt")
	if err := execute(t, "run", "--duration", "0.005", "--out", out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if lines[0] != "1 229.689" {
		t.Errorf("first line %q", lines[0])
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"friction=0, 0.3", "spin=10,20,30"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[1] != "spin" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[0]) != 2 || ranges[0][1] != 0.3 || len(ranges[1]) != 3 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range [][]string{nil, {"friction"}, {"=1,2"}, {"friction=a"}} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("parseGrid(%q) should fail", bad)
		}
	}
}
