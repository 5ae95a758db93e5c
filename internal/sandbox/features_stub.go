//go:build !linux

package sandbox

import "runtime"

// Features describes the kernel facilities the launcher depends on.
// This is a stub for non-Linux platforms.
type Features struct {
	HasSeccomp       bool
	HasSeccompFilter bool
	NoNewPrivs       bool
	ArchSupported    bool
	KernelMajor      int
	KernelMinor      int
}

// DetectFeatures returns empty features on non-Linux platforms.
func DetectFeatures() *Features {
	return &Features{}
}

// Summary reports that seccomp is unavailable here.
func (f *Features) Summary() string {
	return "seccomp requires Linux (running on " + runtime.GOOS + ")"
}

// Usable returns false on non-Linux platforms.
func (f *Features) Usable() bool {
	return false
}
