package valuation

import (
	"io/fs"

	"github.com/goliatone/go-valuation/pkg/render"
)

// EmbeddedTemplates exposes the built-in display and analysis templates so
// callers can copy or override them with render.WithTemplates.
func EmbeddedTemplates() fs.FS {
	return render.Templates()
}
