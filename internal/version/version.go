package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/deskctl/deskctl/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/deskctl/deskctl/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/deskctl/deskctl/internal/version.Date={{.Date}}
)
