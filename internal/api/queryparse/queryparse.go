// Package queryparse turns bracketed query-string keys such as
// "filter[dueDate][gte]" into a nested lookup tree. The syntax is a
// head segment followed by zero or more "[segment]" suffixes; keys
// with unbalanced or empty brackets are kept as literal flat keys.
// Repeated keys keep their first value.
package queryparse

import (
	"net/url"
	"strings"
)

// Node is one level of the parsed tree. A key maps either to a string
// leaf or to a child Node.
type Node map[string]interface{}

// Parse builds the tree for all keys in the given query values.
func Parse(values url.Values) Node {
	root := Node{}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		insert(root, splitKey(key), vals[0])
	}
	return root
}

// String walks the tree along path and returns the leaf value.
// The second return is false when the path is absent or ends on a
// subtree instead of a leaf.
func (n Node) String(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}

	current := n
	for i, segment := range path {
		value, ok := current[segment]
		if !ok {
			return "", false
		}
		if i == len(path)-1 {
			leaf, ok := value.(string)
			return leaf, ok
		}
		child, ok := value.(Node)
		if !ok {
			return "", false
		}
		current = child
	}
	return "", false
}

// splitKey breaks "a[b][c]" into ["a","b","c"]. A key that does not
// follow the bracket grammar is returned whole.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}

	segments := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{key}
		}
		close := strings.IndexByte(rest, ']')
		if close < 0 {
			return []string{key}
		}
		segment := rest[1:close]
		if segment == "" {
			return []string{key}
		}
		segments = append(segments, segment)
		rest = rest[close+1:]
	}
	return segments
}

// insert places value at the path, creating intermediate nodes. A leaf
// already present at an intermediate position wins; the conflicting
// deeper key is dropped.
func insert(node Node, path []string, value string) {
	for i, segment := range path {
		if i == len(path)-1 {
			if _, exists := node[segment]; !exists {
				node[segment] = value
			}
			return
		}
		child, exists := node[segment]
		if !exists {
			next := Node{}
			node[segment] = next
			node = next
			continue
		}
		next, ok := child.(Node)
		if !ok {
			return
		}
		node = next
	}
}
