package model

import (
	"strconv"
	"strings"
)

// ResolveRef extracts the numeric identifier from an API resource reference
// such as "https://rickandmortyapi.com/api/location/42". The trailing path
// segment is parsed as a positive integer; a trailing slash is tolerated.
//
// Empty input, a missing path, or a non-numeric trailing segment all yield
// (0, false). ResolveRef never fails: an unresolvable reference degrades to
// an absent field instead of aborting the fetch.
func ResolveRef(rawURL string) (int, bool) {
	s := strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	if s == "" {
		return 0, false
	}

	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return 0, false
	}

	id, err := strconv.Atoi(s[idx+1:])
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
