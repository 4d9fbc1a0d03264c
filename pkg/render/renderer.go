package render

import "context"

// Renderer turns an order Page into a byte representation (HTML, terminal
// transcript, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
