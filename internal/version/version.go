// Package version reports the build identity of the vidresume binary.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set at build time using ldflags, e.g.
// -X github.com/connorhough/vidresume/internal/version.Version=v0.3.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the version, git commit, build date and target platform.
func String() string {
	return fmt.Sprintf("%s (commit: %s, date: %s, %s/%s)", Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
