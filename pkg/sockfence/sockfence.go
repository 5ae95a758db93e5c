// Package sockfence provides a public API for launching commands with
// local-domain socket creation disabled.
package sockfence

import (
	"golang.org/x/net/bpf"

	"github.com/Use-Tusk/sockfence/internal/filter"
	"github.com/Use-Tusk/sockfence/internal/sandbox"
)

// Arch describes the per-architecture numeric layout the filter program is
// built against.
type Arch = filter.Arch

// LookupArch returns the filter layout for a GOARCH name.
func LookupArch(goarch string) (Arch, error) {
	return filter.Lookup(goarch)
}

// NativeArch returns the filter layout for the running architecture.
func NativeArch() (Arch, error) {
	return filter.Native()
}

// Program returns the filter program for an architecture, for inspection
// or out-of-process evaluation.
func Program(a Arch) []bpf.Instruction {
	return filter.Program(a)
}

// Run locks privileges, installs the socket filter on the calling process
// and replaces it with argv[0], forwarding the remaining arguments
// unchanged. On success Run does not return.
func Run(argv []string, debug bool) error {
	return sandbox.Run(argv, debug)
}
