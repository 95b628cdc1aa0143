package rule

import "strings"

// Match reports whether an event kind matches a rule pattern.
//
//	"push"          exact
//	"issues.*"      one segment: issues.opened, issues.closed
//	"*.deleted"     one segment: branch.deleted
//	"*"             everything
func Match(pattern, kind string) bool {
	if pattern == "*" || pattern == kind {
		return true
	}

	pp := strings.Split(pattern, ".")
	kp := strings.Split(kind, ".")
	if len(pp) != len(kp) {
		return false
	}

	for i, seg := range pp {
		if seg != "*" && seg != kp[i] {
			return false
		}
	}
	return true
}
