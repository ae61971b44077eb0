package cmdutil

import (
	"fmt"
	"strings"
)

// ParseKeyValues turns "key=value" pairs into a map. The first '=' splits;
// values may be empty and later pairs override earlier ones.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	ret := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", p)
		}
		ret[k] = v
	}
	return ret, nil
}
