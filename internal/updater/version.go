package updater

import (
	"fmt"
	"strings"
)

// NormalizeVersion strips spaces and the leading "v".
func NormalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// IsNewer does a major.minor.patch comparison and reports latest > current.
// Development builds never update.
func IsNewer(latest, current string) bool {
	latest, current = NormalizeVersion(latest), NormalizeVersion(current)
	if latest == "" || latest == current || isDevVersion(current) {
		return false
	}
	l := splitVersion(latest)
	c := splitVersion(current)
	for i := 0; i < 3; i++ {
		if l[i] > c[i] {
			return true
		}
		if l[i] < c[i] {
			return false
		}
	}
	return false
}

func isDevVersion(v string) bool {
	return v == "" || v == "dev" || v == "(dev)"
}

// splitVersion parses "1.2.3" into [1, 2, 3]; pre-release suffixes are
// ignored and unparsable parts are 0.
func splitVersion(v string) [3]int {
	var parts [3]int
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fmt.Sscanf(v, "%d.%d.%d", &parts[0], &parts[1], &parts[2])
	return parts
}

// truncate limits s to maxLen bytes, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
