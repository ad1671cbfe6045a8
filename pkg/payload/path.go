package payload

import "strings"

// setPath writes value at a dotted path, creating intermediate maps. Path
// segments never contain dots: keys come from definition identifiers.
func setPath(root map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
}

// GetPath resolves a dotted path in a built payload.
func GetPath(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
