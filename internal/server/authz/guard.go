package authz

import "strings"

// Guard decides whether a caller may run mutating commands. The policy is
// a case-insensitive substring match of the marker against each of the
// caller's role labels, mirroring how the roles are named on the chat
// platform ("Cabinet", "Cabinet Member", "cabinet-2026" all qualify for
// marker "cabinet").
type Guard struct {
	marker string
}

func NewGuard(marker string) *Guard {
	return &Guard{marker: strings.ToLower(marker)}
}

// IsPrivileged reports whether any of the caller's role labels contains
// the marker. An empty marker privileges no one.
func (g *Guard) IsPrivileged(caller *Caller) bool {
	if caller == nil || g.marker == "" {
		return false
	}
	for _, role := range caller.Roles {
		if strings.Contains(strings.ToLower(role), g.marker) {
			return true
		}
	}
	return false
}
