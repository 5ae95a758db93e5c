// Package filter builds the classic-BPF seccomp program that denies
// creation of local-domain (AF_UNIX) sockets and allows every other
// syscall. The program is a fixed decision procedure over the fields the
// kernel hands to a seccomp filter: the audit architecture, the syscall
// number and the first syscall argument.
package filter

import (
	"fmt"
	"runtime"
)

// Arch describes the numeric layout the filter program must be built
// against for one instruction-set architecture: the AUDIT_ARCH_* value the
// kernel reports in seccomp_data.arch, and that architecture's syscall
// numbers for socket(2) and socketpair(2).
//
// Syscall numbers are only meaningful relative to a single architecture's
// table, which is why the program checks the architecture field before
// looking at the syscall number.
type Arch struct {
	Name       string
	AuditArch  uint32
	Socket     uint32
	Socketpair uint32
}

// Audit architecture identifiers from linux/audit.h. Spelled out here so
// the package builds on every platform; the values are part of the kernel
// ABI and never change.
const (
	auditArchX86_64  = 0xc000003e
	auditArchAarch64 = 0xc00000b7
	auditArchRiscv64 = 0xc00000f3
)

// archs maps GOARCH names to their numeric layout. arm64 and riscv64 share
// the asm-generic syscall table; amd64 predates it and has its own numbers.
// All listed architectures are little-endian, which the arg0 load in the
// program relies on.
var archs = map[string]Arch{
	"amd64":   {Name: "amd64", AuditArch: auditArchX86_64, Socket: 41, Socketpair: 53},
	"arm64":   {Name: "arm64", AuditArch: auditArchAarch64, Socket: 198, Socketpair: 199},
	"riscv64": {Name: "riscv64", AuditArch: auditArchRiscv64, Socket: 198, Socketpair: 199},
}

// Lookup returns the layout for a GOARCH name. Unsupported architectures
// are a first-class error rather than a silently wrong program.
func Lookup(goarch string) (Arch, error) {
	a, ok := archs[goarch]
	if !ok {
		return Arch{}, fmt.Errorf("no socket filter layout for architecture %q", goarch)
	}
	return a, nil
}

// Native returns the layout for the architecture this binary was built for.
func Native() (Arch, error) {
	return Lookup(runtime.GOARCH)
}
