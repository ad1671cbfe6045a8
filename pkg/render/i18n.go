package render

import (
	"errors"
	"fmt"
	"strings"
)

// Translator resolves UI message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// ErrMissingKey is returned by MapTranslator for unknown keys.
var ErrMissingKey = errors.New("render: translation key not found")

// UI message keys shared by every front end.
const (
	MsgBack          = "wizard.back"
	MsgNext          = "wizard.next"
	MsgSubmit        = "wizard.submit"
	MsgSubmitting    = "wizard.submitting"
	MsgUpdate        = "wizard.update"
	MsgIndicator     = "wizard.indicator"
	MsgWarnPositive  = "wizard.warning.anyPositive"
	MsgWarnSelected  = "wizard.warning.allSelected"
	MsgWarnGeneric   = "wizard.warning"
	MsgSubmitFailed  = "submit.failed"
	MsgNetworkError  = "submit.network"
	MsgSubmitSuccess = "submit.success"
	MsgTotal         = "summary.total"
	MsgRiskScore     = "summary.riskScore"
	MsgRiskProfile   = "summary.riskProfile"
)

// MapTranslator serves messages from a flat key→format map. Arguments are
// applied with fmt.Sprintf.
type MapTranslator map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(_ string, key string, args ...any) (string, error) {
	format, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	if len(args) == 0 {
		return format, nil
	}
	return fmt.Sprintf(format, args...), nil
}

// DefaultMessages is the built-in English catalogue.
var DefaultMessages = MapTranslator{
	MsgBack:          "Back",
	MsgNext:          "Next",
	MsgSubmit:        "Submit",
	MsgSubmitting:    "Submitting...",
	MsgUpdate:        "Update totals",
	MsgIndicator:     "Step %d of %d",
	MsgWarnPositive:  "Please enter at least one amount greater than zero to continue.",
	MsgWarnSelected:  "Please answer every question to continue.",
	MsgWarnGeneric:   "Please complete this step to continue.",
	MsgSubmitFailed:  "❌ Submission failed. Please try again.",
	MsgNetworkError:  "❌ Network error. Please check your connection and try again.",
	MsgSubmitSuccess: "✅ Submission received. Thank you!",
	MsgTotal:         "Total",
	MsgRiskScore:     "Total risk score",
	MsgRiskProfile:   "Risk profile",
}

// Text translates key with t, falling back to DefaultMessages and finally
// the key itself.
func Text(t Translator, locale, key string, args ...any) string {
	return translate(locale, key, t, missingTranslationDefault, args...)
}

func translate(locale, key string, t Translator, onMissing MissingTranslationHandler, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if t == nil {
		return onMissing(locale, key, args, ErrMissingTranslator)
	}
	msg, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(locale, key, args, err)
	}
	return msg
}

func missingTranslationDefault(locale, key string, args []any, _ error) string {
	if msg, err := DefaultMessages.Translate(locale, key, args...); err == nil {
		return msg
	}
	return key
}
