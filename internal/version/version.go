// Package version exposes build-time version information.
package version

// Overridden at build time:
// go build -ldflags "-X cig/internal/version.Version=1.0.0 -X cig/internal/version.Commit=abc1234"
var (
	Version   = "0.4.0"
	Commit    = ""
	BuildDate = ""
)

// Full returns the complete version line for the version command.
func Full() string {
	out := "cig version " + Version
	if Commit != "" {
		commit := Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		out += " (" + commit + ")"
	}
	if BuildDate != "" {
		out += ", built " + BuildDate
	}
	return out
}
