package render

// RenderOptions carry per-request settings that do not belong to the wizard
// state itself.
type RenderOptions struct {
	// Locale selects the message catalogue passed to Translator.
	Locale string
	// Translator resolves chrome strings. Nil falls back to DefaultMessages.
	Translator Translator
	// Action is the URL the HTML front end posts step actions to.
	Action string
	// Hidden inputs emitted with every step, keyed by name.
	Hidden map[string]string
	// Theme and Variant pick a theme manifest for renderers that support one.
	Theme   string
	Variant string
}
