//go:build linux

package sandbox

import (
	"fmt"
	"os"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Use-Tusk/sockfence/internal/filter"
)

// Installer drives the one-way setup sequence: lock privileges, activate
// the socket filter, exec the target. Each step narrows what the next one
// may do, so the steps are exposed as a session: ActivateFilter is only
// reachable from a PrivilegeLock, Exec only from an ActiveFilter.
// Reordering the sequence is a compile error, not a runtime hole.
type Installer struct {
	debug bool

	// Kernel entry points, swappable in tests.
	prctl    func(option int, arg2, arg3, arg4, arg5 uintptr) error
	seccomp  func(prog *unix.SockFprog) error
	lookPath func(file string) (string, error)
	execve   func(argv0 string, argv, envv []string) error
}

// New returns an Installer backed by the real kernel entry points.
func New(debug bool) *Installer {
	return &Installer{
		debug:    debug,
		prctl:    unix.Prctl,
		seccomp:  installFilter,
		lookPath: exec.LookPath,
		execve:   unix.Exec,
	}
}

// PrivilegeLock witnesses that no_new_privs is set on the calling process.
type PrivilegeLock struct {
	ins *Installer
}

// ActiveFilter witnesses that the socket filter is live on the calling
// process.
type ActiveFilter struct {
	ins *Installer
}

// LockPrivileges marks the process, and every image it becomes, as unable
// to gain privileges through setuid or file-capability binaries. The flag
// cannot be cleared for the life of the process. It must be set before the
// filter loads: the kernel refuses SECCOMP_SET_MODE_FILTER from an
// unprivileged process otherwise, and a filter installed without it could
// still be escaped through a setuid exec.
func (i *Installer) LockPrivileges() (*PrivilegeLock, error) {
	if err := i.prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return nil, fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", err)
	}
	i.debugf("no_new_privs locked")
	return &PrivilegeLock{ins: i}, nil
}

// ActivateFilter builds the filter program for the native architecture and
// binds it to the calling process. Once loaded the filter can never be
// removed or loosened, and it survives exec.
func (l *PrivilegeLock) ActivateFilter() (*ActiveFilter, error) {
	arch, err := filter.Native()
	if err != nil {
		return nil, err
	}
	prog, err := filter.SockFprog(arch)
	if err != nil {
		return nil, fmt.Errorf("assembling filter program: %w", err)
	}
	if err := l.ins.seccomp(prog); err != nil {
		return nil, fmt.Errorf("loading seccomp filter: %w", err)
	}
	l.ins.debugf("socket filter active (%s, %d instructions)", arch.Name, prog.Len)
	return &ActiveFilter{ins: l.ins}, nil
}

// Exec replaces the current process image with argv[0], resolved via PATH,
// passing argv through unchanged. The environment is hardened first, since
// cleanup after this call is impossible: on success Exec never returns and
// the filter stays active in the new image.
func (f *ActiveFilter) Exec(argv []string) error {
	path, err := f.ins.lookPath(argv[0])
	if err != nil {
		return err
	}
	f.ins.debugf("exec %s %v", path, argv[1:])
	if err := f.ins.execve(path, argv, HardenedEnviron(os.Environ())); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}

// Run performs the full sequence. The steps commit strictly in order and
// the first failure aborts without attempting the next one. On success Run
// does not return; the process is the target now.
func (i *Installer) Run(argv []string) error {
	lock, err := i.LockPrivileges()
	if err != nil {
		return &SetupError{Step: "privilege lock", Err: err}
	}
	active, err := lock.ActivateFilter()
	if err != nil {
		return &SetupError{Step: "filter activation", Err: err}
	}
	if err := active.Exec(argv); err != nil {
		return &LaunchError{Name: argv[0], Err: err}
	}
	return nil
}

// Run locks privileges, activates the socket filter and becomes argv[0].
func Run(argv []string, debug bool) error {
	return New(debug).Run(argv)
}

// installFilter loads prog via seccomp(2), falling back to
// prctl(PR_SET_SECCOMP) on kernels that predate the dedicated syscall.
func installFilter(prog *unix.SockFprog) error {
	_, _, errno := unix.Syscall(unix.SYS_SECCOMP,
		unix.SECCOMP_SET_MODE_FILTER, 0, uintptr(unsafe.Pointer(prog)))
	if errno == 0 {
		return nil
	}
	if errno != unix.ENOSYS {
		return errno
	}
	if _, _, errno := unix.Syscall6(unix.SYS_PRCTL,
		unix.PR_SET_SECCOMP, unix.SECCOMP_MODE_FILTER,
		uintptr(unsafe.Pointer(prog)), 0, 0, 0); errno != 0 {
		return errno
	}
	return nil
}

func (i *Installer) debugf(format string, args ...any) {
	if i.debug {
		fmt.Fprintf(os.Stderr, "[sockfence] "+format+"\n", args...)
	}
}
