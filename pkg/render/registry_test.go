package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	name        string
	contentType string
}

func (f fakeRenderer) Name() string        { return f.name }
func (f fakeRenderer) ContentType() string { return f.contentType }
func (f fakeRenderer) Render(context.Context, Page, RenderOptions) ([]byte, error) {
	return []byte(f.name), nil
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(fakeRenderer{name: "vanilla", contentType: "text/html; charset=utf-8"}))

	err := registry.Register(fakeRenderer{name: "vanilla"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(fakeRenderer{}))
}

func TestRegistry_ListIsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(fakeRenderer{name: "vanilla"})
	registry.MustRegister(fakeRenderer{name: "tui"})

	assert.Equal(t, []string{"tui", "vanilla"}, registry.List())
	assert.True(t, registry.Has("tui"))
	assert.False(t, registry.Has("preact"))
}

func TestRegistry_Negotiate(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(fakeRenderer{name: "vanilla", contentType: "text/html; charset=utf-8"})
	registry.MustRegister(fakeRenderer{name: "tui", contentType: "application/json"})

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"json", "application/json", "tui"},
		{"html", "text/html,application/xhtml+xml", "vanilla"},
		{"no match", "image/png", "vanilla"},
		{"empty", "", "vanilla"},
		{"weighted", "text/html;q=0.5, application/json;q=0.9", "tui"},
		{"refused", "application/json;q=0, text/plain", "vanilla"},
		{"wildcard", "*/*", "vanilla"},
		{"parameters ignored", "application/json; charset=utf-8", "tui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Negotiate(tt.accept, "vanilla")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name())
		})
	}

	_, err := registry.Negotiate("", "missing")
	assert.Error(t, err)
}
