package version

// Set at build time with
// -ldflags "-X github.com/automabit/silowatch/internal/version.Version=..."
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "unknown"
	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info is the build metadata reported by the status endpoint
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Get returns the current build metadata
func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

// String formats the build metadata for logs and -version output
func (i Info) String() string {
	if i.Version == "dev" {
		return "dev (commit: " + i.Commit + ")"
	}
	return i.Version + " (commit: " + i.Commit + ", built " + i.BuildDate + ")"
}
