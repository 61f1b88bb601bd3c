package repo

import (
	"fmt"
	"runtime"
)

// set by ldflags
var (
	BuildVersion = "dev"
	BuildBranch  = "unknown"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

var (
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	GoVersion = runtime.Version()
)
