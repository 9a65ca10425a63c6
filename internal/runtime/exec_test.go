package runtime

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides map[string]string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"A=1", "B=2"},
			overrides: map[string]string{"A": "override"},
			want:      []string{"A=override", "B=2"},
		},
		{
			name:      "add new key",
			base:      []string{"A=1"},
			overrides: map[string]string{"B": "2"},
			want:      []string{"A=1", "B=2"},
		},
		{
			name:      "empty base",
			base:      nil,
			overrides: map[string]string{"A": "1"},
			want:      []string{"A=1"},
		},
		{
			name:      "empty overrides",
			base:      []string{"A=1"},
			overrides: nil,
			want:      []string{"A=1"},
		},
		{
			name:      "both empty",
			base:      nil,
			overrides: nil,
			want:      []string{},
		},
		{
			name:      "value with equals sign",
			base:      []string{"CMD=foo=bar"},
			overrides: map[string]string{"OPT": "x=y"},
			want:      []string{"CMD=foo=bar", "OPT=x=y"},
		},
		{
			name:      "malformed base entries skipped",
			base:      []string{"NOEQUALS", "A=1"},
			overrides: map[string]string{"B": "2"},
			want:      []string{"A=1", "B=2"},
		},
		{
			name:      "duplicate base key overridden once",
			base:      []string{"A=1", "A=2", "B=3"},
			overrides: map[string]string{"A": "x"},
			want:      []string{"A=x", "B=3"},
		},
		{
			name:      "new keys appended sorted",
			base:      []string{"Z=1"},
			overrides: map[string]string{"C": "3", "A": "1", "B": "2"},
			want:      []string{"Z=1", "A=1", "B=2", "C=3"},
		},
		{
			name:      "empty override value kept",
			base:      []string{"A=1"},
			overrides: map[string]string{"A": ""},
			want:      []string{"A="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mergeEnv() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Writes an executable shell script named name into a fresh directory that
// becomes the only program directory on PATH, and returns the directory.
func installStub(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	isolatePath(t, dir)
	return dir
}

// Restricts PATH to dir plus links to the few utilities the stub scripts
// call, so an installed copy of the real target can never be picked up.
func isolatePath(t *testing.T, dir string) {
	t.Helper()
	tools := t.TempDir()
	for _, name := range []string{"cat", "sleep"} {
		path, err := exec.LookPath(name)
		if err != nil {
			t.Fatalf("%s not available: %v", name, err)
		}
		if err := os.Symlink(path, filepath.Join(tools, name)); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+tools)
}

func newStubRuntime(t *testing.T, body string) *Runtime {
	t.Helper()
	installStub(t, "bridge-stub", body)
	rt, err := New("bridge-stub")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rt
}

func TestNew(t *testing.T) {
	dir := installStub(t, "bridge-stub", "exit 0")

	rt, err := New("bridge-stub")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if rt.Target() != "bridge-stub" {
		t.Fatalf("Target() = %q, want bridge-stub", rt.Target())
	}
	if rt.Path() != filepath.Join(dir, "bridge-stub") {
		t.Fatalf("Path() = %q, want %q", rt.Path(), filepath.Join(dir, "bridge-stub"))
	}
	wd, _ := os.Getwd()
	if rt.Dir() != wd {
		t.Fatalf("Dir() = %q, want %q", rt.Dir(), wd)
	}
}

func TestNewTargetNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := New("bridge-stub-missing")
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("error = %v, want ErrTargetNotFound", err)
	}
}

func TestNewTargetNotExecutable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bridge-stub"), []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	_, err := New("bridge-stub")
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("error = %v, want ErrTargetNotFound", err)
	}
}

func TestNewEmptyTarget(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestExecCapturesOutput(t *testing.T) {
	rt := newStubRuntime(t, `echo out; echo err >&2; exit 3`)

	result, err := rt.Exec(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.Stdout != "out\n" {
		t.Fatalf("stdout = %q, want %q", result.Stdout, "out\n")
	}
	if result.Stderr != "err\n" {
		t.Fatalf("stderr = %q, want %q", result.Stderr, "err\n")
	}
	if result.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", result.ExitCode)
	}
}

func TestExecArgs(t *testing.T) {
	rt := newStubRuntime(t, `for a in "$@"; do echo "[$a]"; done`)

	result, err := rt.Exec(context.Background(), Spec{Args: []string{"-p", "two words", ""}})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	want := "[-p]\n[two words]\n[]\n"
	if result.Stdout != want {
		t.Fatalf("stdout = %q, want %q", result.Stdout, want)
	}
}

func TestExecEnvOverlay(t *testing.T) {
	t.Setenv("BRIDGE_BASE", "base")
	t.Setenv("BRIDGE_KEEP", "kept")
	rt := newStubRuntime(t, `echo "$BRIDGE_BASE $BRIDGE_KEEP $BRIDGE_NEW"`)

	result, err := rt.Exec(context.Background(), Spec{
		Env: map[string]string{"BRIDGE_BASE": "override", "BRIDGE_NEW": "new"},
	})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.Stdout != "override kept new\n" {
		t.Fatalf("stdout = %q, want %q", result.Stdout, "override kept new\n")
	}
}

func TestExecEnvIsolatedBetweenCalls(t *testing.T) {
	rt := newStubRuntime(t, `echo "${BRIDGE_ONCE:-unset}"`)

	if _, err := rt.Exec(context.Background(), Spec{Env: map[string]string{"BRIDGE_ONCE": "set"}}); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	result, err := rt.Exec(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.Stdout != "unset\n" {
		t.Fatalf("stdout = %q, want unset", result.Stdout)
	}
}

func TestExecDir(t *testing.T) {
	rt := newStubRuntime(t, `pwd -P`)

	result, err := rt.Exec(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	wd, _ := filepath.EvalSymlinks(rt.Dir())
	if strings.TrimSpace(result.Stdout) != wd {
		t.Fatalf("default dir = %q, want %q", strings.TrimSpace(result.Stdout), wd)
	}

	other, _ := filepath.EvalSymlinks(t.TempDir())
	result, err = rt.Exec(context.Background(), Spec{Dir: other})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != other {
		t.Fatalf("dir = %q, want %q", strings.TrimSpace(result.Stdout), other)
	}
}

func TestExecStdin(t *testing.T) {
	rt := newStubRuntime(t, `cat`)

	result, err := rt.Exec(context.Background(), Spec{Stdin: "piped input\n"})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.Stdout != "piped input\n" {
		t.Fatalf("stdout = %q, want piped input", result.Stdout)
	}

	result, err = rt.Exec(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.Stdout != "" {
		t.Fatalf("stdout without stdin = %q, want empty", result.Stdout)
	}
}

func TestExecIgnoresPathOverlayForLookup(t *testing.T) {
	rt := newStubRuntime(t, `echo "server copy"`)

	other := t.TempDir()
	if err := os.WriteFile(filepath.Join(other, "bridge-stub"), []byte("#!/bin/sh\necho \"request copy\"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := rt.Exec(context.Background(), Spec{Env: map[string]string{"PATH": other}})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.Stdout != "server copy\n" {
		t.Fatalf("stdout = %q, want the target found on the server's PATH", result.Stdout)
	}
}

func TestExecSignalled(t *testing.T) {
	rt := newStubRuntime(t, `kill -TERM $$`)

	result, err := rt.Exec(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if result.ExitCode != -15 {
		t.Fatalf("exit code = %d, want -15", result.ExitCode)
	}
}

func TestExecExecutableRemoved(t *testing.T) {
	rt := newStubRuntime(t, `exit 0`)
	if err := os.Remove(rt.Path()); err != nil {
		t.Fatal(err)
	}

	_, err := rt.Exec(context.Background(), Spec{})
	var launchErr *LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("error = %v, want *LaunchError", err)
	}
	if !launchErr.NotFound {
		t.Fatalf("NotFound = false for %v", err)
	}
	if !errors.Is(err, ErrTargetNotFound) || !errors.Is(err, ErrLaunch) {
		t.Fatalf("error %v does not match ErrTargetNotFound and ErrLaunch", err)
	}
}

func TestExecMissingDir(t *testing.T) {
	rt := newStubRuntime(t, `exit 0`)

	_, err := rt.Exec(context.Background(), Spec{Dir: filepath.Join(t.TempDir(), "missing")})
	var launchErr *LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("error = %v, want *LaunchError", err)
	}
	if launchErr.NotFound {
		t.Fatal("missing working directory reported as missing executable")
	}
	if !strings.Contains(err.Error(), "chdir") {
		t.Fatalf("error = %q, want chdir failure", err.Error())
	}
}

func TestExecInvalidEnvName(t *testing.T) {
	rt := newStubRuntime(t, `exit 0`)

	for _, key := range []string{"", "A=B", "NUL\x00"} {
		_, err := rt.Exec(context.Background(), Spec{Env: map[string]string{key: "v"}})
		if !errors.Is(err, ErrLaunch) {
			t.Fatalf("env key %q: error = %v, want ErrLaunch", key, err)
		}
	}
}

func TestVersion(t *testing.T) {
	rt := newStubRuntime(t, `echo "  v1.0 (stub)  "`)

	v, err := rt.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "v1.0 (stub)" {
		t.Fatalf("Version() = %q, want %q", v, "v1.0 (stub)")
	}
}

func TestVersionFailure(t *testing.T) {
	rt := newStubRuntime(t, `exit 1`)

	if _, err := rt.Version(context.Background()); !errors.Is(err, ErrRuntime) {
		t.Fatalf("error = %v, want ErrRuntime", err)
	}
}
