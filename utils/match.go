package utils

import "strings"

// MatchPermission checks whether a granted permission pattern covers the
// required permission. Permissions are ':'-separated segments, e.g.
// "document:read". Patterns may use:
//   - "*" as a non-final segment, matching exactly one segment
//     ("*:read" covers "document:read").
//   - "*" as the final segment, matching one or more remaining segments
//     ("document:*" covers "document:read" and "document:draft:read").
//   - A '*' suffix inside a segment, matching segments with that prefix
//     ("doc*" covers "document").
func MatchPermission(required, pattern string) bool {
	if pattern == required || pattern == "*" {
		return true
	}
	rp := strings.Split(required, ":")
	pp := strings.Split(pattern, ":")
	for i, ps := range pp {
		if ps == "*" {
			// trailing wildcard covers everything that remains
			if i == len(pp)-1 {
				return len(rp) >= len(pp)
			}
			if i >= len(rp) {
				return false
			}
			continue
		}
		if i >= len(rp) {
			return false
		}
		if strings.HasSuffix(ps, "*") {
			if !strings.HasPrefix(rp[i], strings.TrimSuffix(ps, "*")) {
				return false
			}
			continue
		}
		if rp[i] != ps {
			return false
		}
	}
	return len(pp) == len(rp)
}
