package version

import "fmt"

// Build is set at link time.
var Build = "dev"

// Version provides the build version information.
type Version struct {
	Major int
	Minor int
	Build string
}

// String returns the version in Major.Minor-Build format.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d-%s", v.Major, v.Minor, v.Build)
}

// Current returns the current version.
func Current() Version {
	return Version{
		Major: 0,
		Minor: 1,
		Build: Build,
	}
}
