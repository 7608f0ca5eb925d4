package version

import "fmt"

var GitCommit string
var GitTag string

// String renders the build's version as tag+commit, with "dev" standing in
// for an untagged build.
func String() string {
	tag := GitTag
	if tag == "" {
		tag = "dev"
	}
	if GitCommit == "" {
		return tag
	}
	return fmt.Sprintf("%s+%s", tag, GitCommit)
}
