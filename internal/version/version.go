package version

// Version is the service version reported by the health endpoint.
var Version = "1.0.0"

// GetCurrentVersion returns the version for the given mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return Version + "-dev"
	}
	return Version
}
