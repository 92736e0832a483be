package logging

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldReference  = "reference"
	FieldSessionID  = "session_id"
	FieldGeneration = "generation"
	FieldKind       = "kind"
	FieldOldState   = "old_state"
	FieldNewState   = "new_state"
	FieldURI        = "uri"
	FieldPath       = "path"
)
