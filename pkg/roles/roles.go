package roles

import "strings"

// Role is a lower-case role name. Compare roles only after Normalize.
type Role string

const (
	User  Role = "user"
	Admin Role = "admin"
)

var known = map[Role]struct{}{
	User:  {},
	Admin: {},
}

func Normalize(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

func Known(r Role) bool {
	_, ok := known[r]
	return ok
}

func (r Role) String() string { return string(r) }

// NormalizeAll lower-cases the names, drops empty entries and duplicates and
// keeps the first-seen order.
func NormalizeAll(names []string) []Role {
	if len(names) == 0 {
		return nil
	}
	out := make([]Role, 0, len(names))
	seen := make(map[Role]struct{}, len(names))
	for _, n := range names {
		r := Normalize(n)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func Strings(rs []Role) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, string(r))
	}
	return out
}
