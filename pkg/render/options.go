package render

// Level mirrors notice severities.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a banner shown above the form.
type Notice struct {
	Level   Level
	Message string
}

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the page content.
type RenderOptions struct {
	// Action is the form's submit target.
	Action string
	// Hidden adds hidden inputs such as the CSRF token.
	Hidden map[string]string
	// Errors are inline field errors keyed by field name, or by the fixed
	// inputs pricing_tier_id, payment_method_id, deadline, customer_notes.
	Errors map[string][]string
	// FormErrors are shown above the form.
	FormErrors []string
	Notices    []Notice

	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}
