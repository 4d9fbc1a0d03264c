package pongo

import (
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-orderform/pkg/attachments"
)

// descriptions may carry light markup from the admin panel.
var descriptionPolicy = bluemonday.UGCPolicy()

func registerDefaultFilters() {
	register := func(name string, fn pongo2.FilterFunction) {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
	register("trim", filterTrim)
	register("sanitize", filterSanitize)
	register("humansize", filterHumanSize)
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterSanitize strips unsafe markup and marks the remainder safe so
// autoescaping leaves allowed tags intact.
func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(Sanitize(in.String())), nil
}

func filterHumanSize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.IsNumber() {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(attachments.HumanSize(int64(in.Integer()))), nil
}

// Sanitize applies the description policy used by the sanitize filter.
func Sanitize(html string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(html))
}
