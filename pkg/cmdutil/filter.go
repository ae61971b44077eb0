package cmdutil

import (
	"path"
	"strings"
)

// Selectors matches keys exactly or, for selectors containing glob
// metacharacters, with path.Match.
type Selectors struct {
	exact map[string]struct{}
	globs []string
}

// NewSelectors drops blank selectors.
func NewSelectors(selectors []string) Selectors {
	s := Selectors{exact: make(map[string]struct{}, len(selectors))}
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if strings.ContainsAny(sel, "*?[") {
			s.globs = append(s.globs, sel)
			continue
		}
		s.exact[sel] = struct{}{}
	}
	return s
}

func (s Selectors) Empty() bool { return len(s.exact) == 0 && len(s.globs) == 0 }

func (s Selectors) Match(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := s.exact[key]; ok {
		return true
	}
	for _, g := range s.globs {
		if ok, err := path.Match(g, key); err == nil && ok {
			return true
		}
	}
	return false
}

// FilterItems keeps items for which any key function matches a selector.
// With no usable selectors the input is returned unchanged.
func FilterItems[T any](items []T, selectors []string, keyFuncs ...func(T) string) []T {
	sel := NewSelectors(selectors)
	if len(items) == 0 || sel.Empty() || len(keyFuncs) == 0 {
		return items
	}
	result := make([]T, 0, len(items))
	for _, item := range items {
		for _, keyFn := range keyFuncs {
			if keyFn != nil && sel.Match(keyFn(item)) {
				result = append(result, item)
				break
			}
		}
	}
	return result
}
