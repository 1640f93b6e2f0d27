// Package version holds the build identity shown by the CLI, the About
// row and the simulator banner.
package version

const (
	AppName    = "piso"
	AppVersion = "1.3.0"
)

// GetVersionString returns the short version string, e.g. "piso v1.3.0".
func GetVersionString() string {
	return AppName + " v" + AppVersion
}

// GetAppTitle returns the banner title for the simulator.
func GetAppTitle() string {
	return "piso: your storage, as USB drives"
}
