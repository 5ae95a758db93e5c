package sandbox

import "strings"

// loaderEnvPrefixes lists environment variable prefixes that steer the
// dynamic loader. A target that inherits LD_PRELOAD could be made to run
// injected code before the filter-protected program gets control of its
// own image, so these never cross the exec boundary.
var loaderEnvPrefixes = []string{
	"LD_",   // glibc/musl dynamic linker
	"DYLD_", // macOS dynamic linker, harmless on Linux but stripped anyway
}

// HardenedEnviron returns a copy of env with loader-injection variables
// removed. The remaining environment is passed to the target unchanged.
func HardenedEnviron(env []string) []string {
	hardened := make([]string, 0, len(env))
	for _, entry := range env {
		if !isLoaderEnvVar(entry) {
			hardened = append(hardened, entry)
		}
	}
	return hardened
}

// StrippedEnvVars returns the names of the variables HardenedEnviron would
// remove from env. Used for debug logging.
func StrippedEnvVars(env []string) []string {
	var stripped []string
	for _, entry := range env {
		if isLoaderEnvVar(entry) {
			stripped = append(stripped, envKey(entry))
		}
	}
	return stripped
}

// isLoaderEnvVar checks whether a KEY=VALUE entry belongs to the dynamic
// loader namespace.
func isLoaderEnvVar(entry string) bool {
	key := envKey(entry)
	for _, prefix := range loaderEnvPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func envKey(entry string) string {
	if idx := strings.Index(entry, "="); idx != -1 {
		return entry[:idx]
	}
	return entry
}
