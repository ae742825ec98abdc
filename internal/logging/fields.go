package logging

// Standardized attribute keys shared across components so log lines stay
// greppable.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldRequestID = "request_id"
	FieldItemID    = "item_id"
	FieldForum     = "forum"
)
