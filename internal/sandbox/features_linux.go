//go:build linux

package sandbox

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/Use-Tusk/sockfence/internal/filter"
)

// Features describes the kernel facilities the launcher depends on.
type Features struct {
	// HasSeccomp means the kernel was built with CONFIG_SECCOMP.
	HasSeccomp bool
	// HasSeccompFilter means SECCOMP_MODE_FILTER is usable (kernel 3.5+).
	HasSeccompFilter bool
	// NoNewPrivs reports whether no_new_privs is already set on this
	// process, e.g. because a parent launcher set it.
	NoNewPrivs bool
	// ArchSupported means a filter layout exists for this binary's
	// architecture.
	ArchSupported bool

	KernelMajor int
	KernelMinor int
}

var (
	detectedFeatures *Features
	detectOnce       sync.Once
)

// DetectFeatures probes the running kernel. Results are cached for
// subsequent calls.
func DetectFeatures() *Features {
	detectOnce.Do(func() {
		detectedFeatures = &Features{}
		detectedFeatures.detect()
	})
	return detectedFeatures
}

func (f *Features) detect() {
	f.parseKernelVersion()
	f.detectSeccomp()
	f.detectNoNewPrivs()
	_, err := filter.Native()
	f.ArchSupported = err == nil
}

func (f *Features) parseKernelVersion() {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return
	}

	release := unix.ByteSliceToString(uname.Release[:])
	parts := strings.Split(release, ".")
	if len(parts) >= 2 {
		f.KernelMajor, _ = strconv.Atoi(parts[0])
		// Handle versions like "6.2.0-39-generic"
		minorStr := strings.Split(parts[1], "-")[0]
		f.KernelMinor, _ = strconv.Atoi(minorStr)
	}
}

func (f *Features) detectSeccomp() {
	// PR_GET_SECCOMP fails with EINVAL when the kernel lacks seccomp
	// entirely; otherwise it returns the current mode.
	_, _, errno := unix.Syscall(unix.SYS_PRCTL, unix.PR_GET_SECCOMP, 0, 0)
	if errno == 0 {
		f.HasSeccomp = true
	}

	// Filter mode needs 3.5+. The seccomp(2) entry point arrived in 3.17;
	// installFilter falls back to prctl for the gap in between.
	if f.HasSeccomp && (f.KernelMajor > 3 || (f.KernelMajor == 3 && f.KernelMinor >= 5)) {
		f.HasSeccompFilter = true
	}
}

func (f *Features) detectNoNewPrivs() {
	ret, _, errno := unix.Syscall(unix.SYS_PRCTL, unix.PR_GET_NO_NEW_PRIVS, 0, 0)
	f.NoNewPrivs = errno == 0 && ret == 1
}

// Summary returns a human-readable summary of available features.
func (f *Features) Summary() string {
	parts := []string{fmt.Sprintf("kernel %d.%d", f.KernelMajor, f.KernelMinor)}

	switch {
	case f.HasSeccompFilter:
		parts = append(parts, "seccomp-filter")
	case f.HasSeccomp:
		parts = append(parts, "seccomp(strict-only)")
	default:
		parts = append(parts, "no-seccomp")
	}

	if f.NoNewPrivs {
		parts = append(parts, "no_new_privs(inherited)")
	}
	if !f.ArchSupported {
		parts = append(parts, "unsupported-arch")
	}

	return strings.Join(parts, ", ")
}

// Usable reports whether the launcher can work on this kernel.
func (f *Features) Usable() bool {
	return f.HasSeccompFilter && f.ArchSupported
}
