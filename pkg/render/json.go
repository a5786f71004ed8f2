package render

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/present"
)

type jsonRenderer struct{}

// NewJSON returns a renderer that encodes the display model as JSON.
func NewJSON() Renderer { return jsonRenderer{} }

func (jsonRenderer) Name() string        { return "json" }
func (jsonRenderer) ContentType() string { return "application/json" }

func (jsonRenderer) Render(ctx context.Context, display model.DisplayModel, _ RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return marshal(display)
}

func (jsonRenderer) RenderAnalysis(ctx context.Context, view present.AnalysisView, _ RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return marshal(view)
}

func marshal(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
