package sandbox

import "fmt"

// SetupError reports that the privilege lock or the filter activation was
// rejected by the kernel. Nothing has been launched when it is returned,
// and the launcher must not proceed: running the target without both
// protections would silently skip the sandbox.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// LaunchError reports that the target command could not be started after
// the filter was already active. The filter being live is immaterial at
// this point; the process exits without running the target.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("cannot launch %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
