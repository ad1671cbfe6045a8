package render

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Names of the hidden inputs posted back with every wizard action.
const (
	HiddenStep    = "step"
	HiddenSession = "session"
)

// HiddenField is one hidden input of the step form.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StepField pins the step index the page was drawn for. A post whose step
// no longer matches the session is stale.
func StepField(index int) HiddenField {
	return HiddenField{Name: HiddenStep, Value: strconv.Itoa(index)}
}

// SessionField carries the session id.
func SessionField(id string) HiddenField {
	return HiddenField{Name: HiddenSession, Value: id}
}

// MergeHiddenFields layers fields over a copy of base. Names are trimmed,
// blank names dropped, and the last value for a name wins. The result is nil
// when nothing remains.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	put := func(name, value string) {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = value
		}
	}
	for name, value := range base {
		put(name, value)
	}
	for _, field := range fields {
		put(field.Name, field.Value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields lists fields by name so pages render identically.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(fields))
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		out = append(out, HiddenField{Name: name, Value: fields[name]})
	}
	return out
}
