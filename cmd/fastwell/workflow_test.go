package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildCLI compiles the binary once per test run, or uses FASTWELL_BIN
func buildCLI(t *testing.T) string {
	t.Helper()
	if bin := os.Getenv("FASTWELL_BIN"); bin != "" {
		return bin
	}
	if testing.Short() {
		t.Skip("skipping workflow test in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not on PATH")
	}
	bin := filepath.Join(t.TempDir(), "fastwell")
	build := exec.Command(goBin, "build", "-o", bin, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build CLI: %v\n%s", err, out)
	}
	return bin
}

func isolatedEnv(home string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "FASTWELL_") {
			continue
		}
		env = append(env, e)
	}
	return append(env, "HOME="+home, "FASTWELL_TIMEZONE=UTC")
}

func runCmd(t *testing.T, bin string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("fastwell %s failed: %v\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), err, stdout.String(), stderr.String())
	}
	return stdout.String()
}

func runFail(t *testing.T, bin string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("fastwell %s succeeded, want failure\n%s", strings.Join(args, " "), out)
	}
	return string(out)
}

func TestEndToEndWorkflow(t *testing.T) {
	bin := buildCLI(t)
	home := t.TempDir()
	env := isolatedEnv(home)

	t.Log("Initializing storage...")
	out := runCmd(t, bin, env, "init")
	if !strings.Contains(out, filepath.Join(home, ".config", "fastwell", "fastwell.db")) {
		t.Errorf("init output = %q", out)
	}

	if out := runFail(t, bin, env, "fast", "show"); !strings.Contains(out, "no active fast") {
		t.Errorf("show with no fast = %q", out)
	}

	t.Log("Starting a 24 hour fast...")
	out = runCmd(t, bin, env, "fast", "new", "--duration", "24h", "--goal", "wisdom for the week")
	if !strings.Contains(out, "Fast created") || !strings.Contains(out, "wisdom for the week") {
		t.Errorf("fast new output = %q", out)
	}
	if out := runFail(t, bin, env, "fast", "new", "--duration", "12h"); !strings.Contains(out, "Error:") {
		t.Errorf("second active fast output = %q", out)
	}

	runCmd(t, bin, env, "prayer", "log", "--note", "for the church")
	runCmd(t, bin, env, "checkin", "--hunger", "3", "--clarity", "8", "--temptation", "2")
	runCmd(t, bin, env, "journal", "add", "Starting well.", "--title", "Hour one")

	if out := runCmd(t, bin, env, "prayer", "list"); !strings.Contains(out, "for the church") {
		t.Errorf("prayer list = %q", out)
	}
	if out := runCmd(t, bin, env, "journal", "list"); !strings.Contains(out, "Hour one") {
		t.Errorf("journal list = %q", out)
	}

	var p struct {
		Percentage float64 `json:"percentage"`
		IsComplete bool    `json:"isComplete"`
	}
	if err := json.Unmarshal([]byte(runCmd(t, bin, env, "fast", "progress", "--json")), &p); err != nil {
		t.Fatalf("progress --json is not JSON: %v", err)
	}
	if p.IsComplete || p.Percentage < 0 || p.Percentage > 5 {
		t.Errorf("progress of a fresh fast = %+v", p)
	}

	if out := runCmd(t, bin, env, "fast", "route"); !strings.Contains(out, "ActivelyFasting") {
		t.Errorf("route with active fast = %q", out)
	}

	t.Log("Backing up...")
	runCmd(t, bin, env, "backup", "create")
	if out := runCmd(t, bin, env, "backup", "list"); !strings.Contains(out, "fastwell-") {
		t.Errorf("backup list = %q", out)
	}

	runCmd(t, bin, env, "fast", "break", "--yes")
	if out := runCmd(t, bin, env, "fast", "list", "--status", "failed"); !strings.Contains(out, "wisdom for the week") {
		t.Errorf("failed fasts = %q", out)
	}

	t.Log("Changing configuration...")
	runCmd(t, bin, env, "config", "set", "page_limit", "25")
	if out := runCmd(t, bin, env, "config", "show"); !strings.Contains(out, "25") {
		t.Errorf("config show = %q", out)
	}
	if out := runFail(t, bin, env, "config", "set", "page_limit", "500"); !strings.Contains(out, "page_limit") {
		t.Errorf("invalid page_limit output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "fastwell", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}
