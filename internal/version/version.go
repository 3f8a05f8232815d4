package version

// Version is the current dbts release.
const Version = "0.3.0"

// FullVersion returns Version with the v prefix.
func FullVersion() string {
	return "v" + Version
}
