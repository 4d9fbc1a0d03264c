package schema

import "errors"

var (
	// ErrUnknownFieldKind reports a field type outside the supported set.
	ErrUnknownFieldKind = errors.New("schema: unknown field kind")
	// ErrDuplicateFieldName reports two fields sharing a name.
	ErrDuplicateFieldName = errors.New("schema: duplicate field name")
	// ErrMissingFieldName reports a field without a name.
	ErrMissingFieldName = errors.New("schema: field name is required")
	// ErrMissingOptions reports a choice field without options.
	ErrMissingOptions = errors.New("schema: choice field has no options")
	// ErrDuplicateOption reports repeated option values within one field.
	ErrDuplicateOption = errors.New("schema: duplicate option value")
	// ErrDuplicateTier reports repeated pricing tier ids.
	ErrDuplicateTier = errors.New("schema: duplicate pricing tier id")
)
