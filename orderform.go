package orderform

import (
	"fmt"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

// RenderOptions describes per-request data such as notices, field errors
// and the CSRF token.
type RenderOptions = render.RenderOptions

// Page is everything the order form shows.
type Page = render.Page

// NewClient builds an order API client. An empty token sends no
// Authorization header.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) (*client.Client, error) {
	opts := []client.Option{client.WithTimeout(timeout), client.WithLogger(logger)}
	if strings.TrimSpace(token) != "" {
		opts = append(opts, client.WithAuth(client.TokenAuth{Token: token}))
	}
	return client.New(baseURL, opts...)
}

// NewHTMLRenderer builds the HTML order form renderer using money for price
// display and the resolved theme, if any.
func NewHTMLRenderer(money pricing.Formatter, themeCfg *theme.RendererConfig, options ...vanilla.Option) (*vanilla.Renderer, error) {
	opts := []vanilla.Option{vanilla.WithFormatter(money)}
	if themeCfg != nil {
		opts = append(opts, vanilla.WithTheme(themeCfg))
	}
	return vanilla.New(append(opts, options...)...)
}

// NewRegistry registers renderers into a fresh registry.
func NewRegistry(renderers ...render.Renderer) (*render.Registry, error) {
	registry := render.NewRegistry()
	for _, renderer := range renderers {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// ResolveTheme asks selector for name/variant and converts the selection
// into renderer configuration. An empty name means no theme.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	if selector == nil {
		return nil, fmt.Errorf("orderform: no theme selector for theme %q", name)
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orderform: select theme %q: %w", name, err)
	}
	return vanilla.ThemeConfig(selection), nil
}

// ThemeSelector picks among a fixed set of manifests.
type ThemeSelector struct {
	manifests map[string]*theme.Manifest
}

// NewThemeSelector indexes manifests by name.
func NewThemeSelector(manifests ...*theme.Manifest) *ThemeSelector {
	s := &ThemeSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest != nil && manifest.Name != "" {
			s.manifests[manifest.Name] = manifest
		}
	}
	return s
}

// Select implements theme.ThemeSelector. Unknown variants fall back to the
// manifest's base tokens.
func (s *ThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("orderform: unknown theme %q", name)
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

var _ theme.ThemeSelector = (*ThemeSelector)(nil)

// DefaultThemeManifest is the built-in theme. Its tokens feed the CSS
// custom properties the embedded stylesheet reads.
func DefaultThemeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "einstein",
		Version: "1.0.0",
		Tokens: map[string]string{
			"of-brand":  "#1f4e79",
			"of-error":  "#b3261e",
			"of-muted":  "#5f6368",
			"of-radius": "6px",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"of-brand": "#8ab4f8",
					"of-muted": "#9aa0a6",
				},
			},
		},
	}
}
