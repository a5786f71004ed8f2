package render

import (
	"context"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/present"
)

// Renderer converts a DisplayModel into bytes.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, display model.DisplayModel, options RenderOptions) ([]byte, error)
}

// AnalysisRenderer is implemented by renderers that can also show the market
// analysis page.
type AnalysisRenderer interface {
	RenderAnalysis(ctx context.Context, view present.AnalysisView, options RenderOptions) ([]byte, error)
}
