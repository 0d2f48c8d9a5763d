// Package compileinfo reports how the running binary was built, from the
// build metadata the Go toolchain embeds.
package compileinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Package    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	if c.Commit == "" {
		return fmt.Sprintf("%s built with %s", c.Package, c.GoVersion)
	}
	mod := ""
	if c.Modified {
		mod = " (modified)"
	}
	return fmt.Sprintf("%s built with %s at commit %s%s, %s", c.Package, c.GoVersion, c.Commit, mod, c.CommitTime)
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Package = z.Path
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// PrintToStdErr writes the build banner to stderr.
func PrintToStdErr() {
	fmt.Fprintf(os.Stderr, "%s\n", Get())
}
