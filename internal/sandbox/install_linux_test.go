//go:build linux

package sandbox

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/Use-Tusk/sockfence/internal/filter"
)

// fakeInstaller records which kernel entry points Run touches, in order,
// and can make any single step fail.
func fakeInstaller(t *testing.T, calls *[]string, failAt string) *Installer {
	t.Helper()
	return &Installer{
		prctl: func(option int, arg2, arg3, arg4, arg5 uintptr) error {
			if option != unix.PR_SET_NO_NEW_PRIVS || arg2 != 1 {
				t.Errorf("unexpected prctl(%d, %d)", option, arg2)
			}
			*calls = append(*calls, "lock")
			if failAt == "lock" {
				return unix.EINVAL
			}
			return nil
		},
		seccomp: func(prog *unix.SockFprog) error {
			if prog == nil || prog.Len == 0 || prog.Filter == nil {
				t.Error("seccomp called with an empty program")
			}
			*calls = append(*calls, "filter")
			if failAt == "filter" {
				return unix.EACCES
			}
			return nil
		},
		lookPath: func(file string) (string, error) {
			*calls = append(*calls, "lookpath")
			if failAt == "lookpath" {
				return "", errors.New("executable file not found in $PATH")
			}
			return "/bin/" + file, nil
		},
		execve: func(argv0 string, argv, envv []string) error {
			*calls = append(*calls, "exec")
			if failAt == "exec" {
				return unix.ENOEXEC
			}
			// The real execve does not return on success.
			return nil
		},
	}
}

func skipIfArchUnsupported(t *testing.T) {
	t.Helper()
	if _, err := filter.Native(); err != nil {
		t.Skipf("skipping: %v", err)
	}
}

func TestRunStrictOrdering(t *testing.T) {
	skipIfArchUnsupported(t)

	var calls []string
	ins := fakeInstaller(t, &calls, "")

	if err := ins.Run([]string{"myecho", "hello"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"lock", "filter", "lookpath", "exec"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestRunAbortsAtFirstFailure(t *testing.T) {
	skipIfArchUnsupported(t)

	tests := []struct {
		failAt     string
		wantCalls  []string
		wantSetup  bool
		wantLaunch bool
	}{
		{failAt: "lock", wantCalls: []string{"lock"}, wantSetup: true},
		{failAt: "filter", wantCalls: []string{"lock", "filter"}, wantSetup: true},
		{failAt: "lookpath", wantCalls: []string{"lock", "filter", "lookpath"}, wantLaunch: true},
		{failAt: "exec", wantCalls: []string{"lock", "filter", "lookpath", "exec"}, wantLaunch: true},
	}

	for _, tt := range tests {
		t.Run(tt.failAt, func(t *testing.T) {
			var calls []string
			ins := fakeInstaller(t, &calls, tt.failAt)

			err := ins.Run([]string{"target"})
			if err == nil {
				t.Fatal("Run succeeded, want failure")
			}

			if len(calls) != len(tt.wantCalls) {
				t.Errorf("calls = %v, want %v (no step may run after a failure)", calls, tt.wantCalls)
			}

			var setupErr *SetupError
			var launchErr *LaunchError
			if gotSetup := errors.As(err, &setupErr); gotSetup != tt.wantSetup {
				t.Errorf("errors.As(SetupError) = %v, want %v (err: %v)", gotSetup, tt.wantSetup, err)
			}
			if gotLaunch := errors.As(err, &launchErr); gotLaunch != tt.wantLaunch {
				t.Errorf("errors.As(LaunchError) = %v, want %v (err: %v)", gotLaunch, tt.wantLaunch, err)
			}
			if tt.wantLaunch && launchErr != nil && launchErr.Name != "target" {
				t.Errorf("LaunchError.Name = %q, want %q", launchErr.Name, "target")
			}
		})
	}
}

// TestActivateFilterInstallsTenInstructions pins the program handed to the
// kernel to the fixed decision procedure.
func TestActivateFilterInstallsTenInstructions(t *testing.T) {
	skipIfArchUnsupported(t)

	var installed *unix.SockFprog
	var calls []string
	ins := fakeInstaller(t, &calls, "")
	ins.seccomp = func(prog *unix.SockFprog) error {
		installed = prog
		return nil
	}

	lock, err := ins.LockPrivileges()
	if err != nil {
		t.Fatalf("LockPrivileges: %v", err)
	}
	if _, err := lock.ActivateFilter(); err != nil {
		t.Fatalf("ActivateFilter: %v", err)
	}
	if installed == nil {
		t.Fatal("no program reached the seccomp entry point")
	}
	if installed.Len != 10 {
		t.Errorf("installed program has %d instructions, want 10", installed.Len)
	}
}

// TestExecForwardsArgvVerbatim checks the target sees exactly the argv the
// caller supplied, with argv[0] doubling as the lookup name.
func TestExecForwardsArgvVerbatim(t *testing.T) {
	skipIfArchUnsupported(t)

	var gotArgv0 string
	var gotArgv []string
	var calls []string
	ins := fakeInstaller(t, &calls, "")
	ins.execve = func(argv0 string, argv, envv []string) error {
		gotArgv0 = argv0
		gotArgv = argv
		return nil
	}

	argv := []string{"myecho", "hello", "-d", "--", "trailing"}
	if err := ins.Run(argv); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if gotArgv0 != "/bin/myecho" {
		t.Errorf("argv0 = %q, want %q", gotArgv0, "/bin/myecho")
	}
	if len(gotArgv) != len(argv) {
		t.Fatalf("argv = %v, want %v", gotArgv, argv)
	}
	for i := range argv {
		if gotArgv[i] != argv[i] {
			t.Fatalf("argv = %v, want %v", gotArgv, argv)
		}
	}
}
