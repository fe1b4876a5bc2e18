package store

import (
	"fmt"
	"regexp"
)

// UniqueName returns a name derived from candidate that does not collide
// with any name in existing.
//
// When candidate itself is free it is returned unchanged. Otherwise the
// result is "candidate #n" with the smallest n >= 1 not already taken by a
// sibling whose name matches the candidate's suffix family
// (`^candidate( #<digits>)*$`).
func UniqueName(existing []string, candidate string) string {
	family := regexp.MustCompile(`^` + regexp.QuoteMeta(candidate) + `( #(\d+))*$`)

	// taken[0] stands for the bare candidate; taken[n] for "candidate #n".
	taken := make(map[int]bool)
	for _, name := range existing {
		match := family.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		if match[2] == "" {
			taken[0] = true
			continue
		}
		var n int
		if _, err := fmt.Sscanf(match[2], "%d", &n); err == nil {
			taken[n] = true
		}
	}

	if !taken[0] {
		return candidate
	}
	for n := 1; ; n++ {
		if !taken[n] {
			return fmt.Sprintf("%s #%d", candidate, n)
		}
	}
}
