package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-orderform/pkg/submission"
)

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	notify := terminalNotifier(&buf)
	notify.Notify(context.Background(), submission.Notice{Level: submission.LevelSuccess, Message: "done"})
	notify.Notify(context.Background(), submission.Notice{Level: submission.LevelWarning, Message: "careful"})
	notify.Notify(context.Background(), submission.Notice{Level: submission.LevelError, Message: "failed"})

	assert.Equal(t, "✓ done\n! careful\n✗ failed\n", buf.String())
}

func TestConfirmationURL(t *testing.T) {
	tests := []struct {
		site string
		want string
	}{
		{"", "/order-confirmation?order_id=42"},
		{"https://einstein.example/", "https://einstein.example/order-confirmation?order_id=42"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, confirmationURL(tc.site, "/order-confirmation?order_id=42"))
	}
}

func TestLoadFormConfig_RequiresSource(t *testing.T) {
	_, err := loadFormConfig(context.Background(), nil, "")
	assert.Error(t, err)
}
