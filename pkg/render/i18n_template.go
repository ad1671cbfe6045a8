package render

import "strings"

// TemplateHelpers returns the translation helpers the HTML templates call:
//
//	translate(locale, key, args...)  message for key in locale
//	current_locale(view)             locale carried by a view or view map
//
// A nil onMissing falls back to DefaultMessages and then the key.
func TemplateHelpers(t Translator, onMissing MissingTranslationHandler) map[string]any {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	return map[string]any{
		"translate": func(src any, key string, args ...any) string {
			return translate(localeOf(src), key, t, onMissing, args...)
		},
		"current_locale": localeOf,
	}
}

// localeOf reads a locale from a string, a View, or the decoded view map a
// template sees.
func localeOf(src any) string {
	switch v := src.(type) {
	case string:
		return strings.TrimSpace(v)
	case View:
		return v.Locale
	case *View:
		if v != nil {
			return v.Locale
		}
	case map[string]any:
		if locale, ok := v["locale"].(string); ok {
			return locale
		}
	}
	return ""
}
