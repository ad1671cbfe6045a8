package submit

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/model"
)

var (
	// ErrInFlight is returned when Submit is called while a submission is
	// still running.
	ErrInFlight = errors.New("submit: submission already in flight")
	// ErrNoEndpoint is returned when the form declares no submit URL.
	ErrNoEndpoint = errors.New("submit: form has no submit url")
)

// ErrorMapping splits a remote error document into field-level and
// form-level messages. Field keys are form field names.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// Empty reports whether the mapping carries no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MapErrorPayload resolves error keys to field names. Keys may be bare field
// names ("rent"), payload paths ("data.housing.rent", "assets.k401.client"),
// or JSON pointers ("/meta/clientName"). Unknown keys become form-level
// messages so nothing is lost.
func MapErrorPayload(form *model.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	paths := payloadPaths(form)
	for _, rawPath := range keys {
		normalized := normalizeMessages(payload[rawPath])
		if len(normalized) == 0 {
			continue
		}
		field, ok := resolvePath(rawPath, form, paths)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[field] = append(mapping.Fields[field], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// payloadPaths indexes every payload leaf path that corresponds to a field.
func payloadPaths(form *model.Form) map[string]string {
	out := make(map[string]string)
	for _, name := range form.Meta {
		out["meta."+name] = name
	}
	for _, section := range form.Payload {
		switch section.Kind {
		case model.SectionGroups:
			for _, group := range form.GroupKeys() {
				for _, field := range form.GroupFields(group) {
					out[section.Key+"."+group+"."+field.Name] = field.Name
				}
			}
		case model.SectionRows:
			table, ok := form.Table(section.Table)
			if !ok {
				continue
			}
			for _, row := range table.Rows {
				for _, column := range table.Columns {
					out[section.Key+"."+row.Key+"."+column.Key] = model.CellName(row, column.Key)
				}
			}
		case model.SectionFields:
			for _, name := range section.Fields {
				out[section.Key+"."+name] = name
			}
		case model.SectionQuestions:
			for _, q := range form.Questions() {
				out[section.Key+"."+q.Key] = q.Key
			}
		}
	}
	return out
}

func resolvePath(raw string, form *model.Form, paths map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", false
	}
	if len(segments) == 1 {
		if _, ok := form.Field(segments[0]); ok {
			return segments[0], true
		}
	}

	for _, variant := range [][]string{segments, dropWrapperSegments(segments)} {
		for end := len(variant); end > 0; end-- {
			if field, ok := paths[strings.Join(variant[:end], ".")]; ok {
				return field, true
			}
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		switch strings.ToLower(out[0]) {
		case "body", "request", "payload":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
