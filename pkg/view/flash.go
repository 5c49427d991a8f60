package view

// FlashKind classifies a transient notice. The cart engine raises FlashError
// when a debounced quantity edit fails at settle and FlashWarning when a
// resync could not complete; both ride along with the next cart payload.
type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is one drained notice. Notices buffer between requests because
// settles fire from timers, outside any request cycle.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}
