// Package version holds build metadata set through -ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sociallike/internal/version.Version=v1.0.0"
package version

// Version contains the application version information.
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version followed by commit and build time when known.
func String() string {
	s := Version
	if GitCommit != "unknown" && GitCommit != "" {
		s += " (" + GitCommit
		if BuildTime != "unknown" && BuildTime != "" {
			s += ", " + BuildTime
		}
		s += ")"
	}
	return s
}
