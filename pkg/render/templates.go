package render

import (
	"context"
	"embed"
	"fmt"
	"html"
	"io/fs"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/present"
	"github.com/goliatone/go-valuation/pkg/render/template"
	"github.com/goliatone/go-valuation/pkg/render/template/pongo"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Templates returns the built-in template files.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	plainOnce   sync.Once
	plainPolicy *bluemonday.Policy
)

// plain removes any markup from server supplied text before it reaches a
// template.
func plain(s string) string {
	plainOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(plainPolicy.Sanitize(s))
}

// templateRenderer renders display and analysis templates of one flavour
// (txt or html) through a TemplateRenderer.
type templateRenderer struct {
	name        string
	contentType string
	flavour     string
	engine      template.TemplateRenderer
}

// TemplateOption configures the text and HTML renderers.
type TemplateOption func(*templateConfig)

type templateConfig struct {
	files  fs.FS
	engine template.TemplateRenderer
}

// WithTemplates replaces the built-in templates. The filesystem must provide
// display.<flavour>.tpl and analysis.<flavour>.tpl.
func WithTemplates(files fs.FS) TemplateOption {
	return func(cfg *templateConfig) {
		cfg.files = files
	}
}

// WithEngine injects a preconfigured template engine.
func WithEngine(engine template.TemplateRenderer) TemplateOption {
	return func(cfg *templateConfig) {
		cfg.engine = engine
	}
}

func newTemplateRenderer(name, contentType, flavour string, options []TemplateOption) (*templateRenderer, error) {
	cfg := templateConfig{files: Templates()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	engine := cfg.engine
	if engine == nil {
		e, err := pongo.New(pongo.WithFS(cfg.files), pongo.WithName("render-"+name))
		if err != nil {
			return nil, fmt.Errorf("render: %s engine: %w", name, err)
		}
		engine = e
	}
	return &templateRenderer{name: name, contentType: contentType, flavour: flavour, engine: engine}, nil
}

// NewText returns the plain text renderer.
func NewText(options ...TemplateOption) (Renderer, error) {
	return newTemplateRenderer("text", "text/plain; charset=utf-8", "txt", options)
}

// NewHTML returns the HTML fragment renderer.
func NewHTML(options ...TemplateOption) (Renderer, error) {
	return newTemplateRenderer("html", "text/html; charset=utf-8", "html", options)
}

func (r *templateRenderer) Name() string        { return r.name }
func (r *templateRenderer) ContentType() string { return r.contentType }

func (r *templateRenderer) Render(ctx context.Context, display model.DisplayModel, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	display.Message = plain(display.Message)
	display.Detail = plain(display.Detail)
	return r.execute("display", map[string]any{
		"display": display,
		"opts":    options.withDefaults(),
	})
}

func (r *templateRenderer) RenderAnalysis(ctx context.Context, view present.AnalysisView, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.execute("analysis", map[string]any{
		"view": view,
		"opts": options.withDefaults(),
	})
}

func (r *templateRenderer) execute(name string, data map[string]any) ([]byte, error) {
	out, err := r.engine.RenderTemplate(name+"."+r.flavour, data)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", r.name, err)
	}
	return []byte(out), nil
}
