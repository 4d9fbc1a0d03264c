package submission

import "context"

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a customer-facing message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier delivers notices, e.g. as flash messages or terminal output.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(ctx context.Context, notice Notice) { fn(ctx, notice) }

type discard struct{}

func (discard) Notify(context.Context, Notice) {}
