package poa

import "fmt"

// Release of the governance module, bumped with every tagged release.
const (
	Maj = 0
	Min = 1
	Fix = 0
)

// GitCommit is set at build time with
//
//	-ldflags "-X github.com/iov-one/poa.GitCommit=$(git rev-parse --short HEAD)"
var GitCommit = ""

// Version returns the release, followed by the commit when known. Builds
// without a commit are marked as development ones.
func Version() string {
	v := fmt.Sprintf("v%d.%d.%d", Maj, Min, Fix)
	if GitCommit == "" {
		return v + "-dev"
	}
	return v + " " + GitCommit
}
