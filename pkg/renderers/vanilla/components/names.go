package components

// Component names registered by NewDefaultRegistry. Field kinds map onto
// them through ForKind.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
	NameChoices  = "choices"
)
