// Package version holds build-time metadata injected via ldflags.
package version

// These variables are set at build time using -ldflags:
//
//	-X 'github.com/janekbaraniewski/usagedash/internal/version.Version=...'
//	-X 'github.com/janekbaraniewski/usagedash/internal/version.CommitHash=...'
var (
	Version    = "dev"
	CommitHash = "unknown"
)

func String() string {
	return Version + " (" + CommitHash + ")"
}
