package dom

import (
	"slices"
	"strings"
)

// selector is a compound simple selector: an optional tag followed by any
// number of #id and .class parts, e.g. "div.box#hero".
type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~,[]:") {
		return selector{}, false
	}
	var sel selector
	i := 0
	for i < len(s) && s[i] != '#' && s[i] != '.' {
		i++
	}
	sel.tag = s[:i]
	for i < len(s) {
		marker := s[i]
		j := i + 1
		for j < len(s) && s[j] != '#' && s[j] != '.' {
			j++
		}
		name := s[i+1 : j]
		if name == "" {
			return selector{}, false
		}
		if marker == '#' {
			if sel.id != "" && sel.id != name {
				return selector{}, false
			}
			sel.id = name
		} else {
			sel.classes = append(sel.classes, name)
		}
		i = j
	}
	return sel, true
}

func (s selector) matches(n *Node) bool {
	if s.tag != "" && !strings.EqualFold(s.tag, n.Tag) {
		return false
	}
	if s.id != "" && s.id != n.ID {
		return false
	}
	for _, c := range s.classes {
		if !slices.Contains(n.Classes, c) {
			return false
		}
	}
	return true
}
