//go:build !linux

package sandbox

import (
	"fmt"
	"runtime"
)

// Installer is a stub on platforms without seccomp.
type Installer struct {
	debug bool
}

// New returns a stub Installer.
func New(debug bool) *Installer {
	return &Installer{debug: debug}
}

// Run always fails on non-Linux platforms, before any process state is
// touched.
func (i *Installer) Run(argv []string) error {
	return &SetupError{
		Step: "platform check",
		Err:  fmt.Errorf("seccomp filtering requires Linux (running on %s)", runtime.GOOS),
	}
}

// Run is the non-Linux stub; it never launches anything.
func Run(argv []string, debug bool) error {
	return New(debug).Run(argv)
}
