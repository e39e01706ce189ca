package stores

import (
	"encoding/json"
	"time"

	"github.com/oarkflow/date"
)

func parseFlexibleTime(s string) (time.Time, error) {
	return date.Parse(s)
}

// permsJSON encodes a permission set for storage. nil (no metadata attached)
// is stored as SQL NULL so it stays distinct from an empty set.
func permsJSON(perms []string) any {
	if perms == nil {
		return nil
	}
	b, _ := json.Marshal(perms)
	return string(b)
}

func jsonPerms(raw any) []string {
	var s string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(s), &perms); err != nil {
		return nil
	}
	if perms == nil {
		perms = []string{}
	}
	return perms
}

func scanTime(raw any) time.Time {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		if t, err := parseFlexibleTime(v); err == nil {
			return t
		}
	case []byte:
		if t, err := parseFlexibleTime(string(v)); err == nil {
			return t
		}
	}
	return time.Time{}
}
