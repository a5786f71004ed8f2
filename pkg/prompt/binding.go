package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/render"
	"github.com/goliatone/go-valuation/pkg/schema"
	"github.com/goliatone/go-valuation/pkg/screen"
)

// Option configures a Binding.
type Option func(*Binding)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(b *Binding) {
		if driver != nil {
			b.driver = driver
		}
	}
}

// WithRenderer sets the renderer used to print the result.
func WithRenderer(r render.Renderer) Option {
	return func(b *Binding) {
		if r != nil {
			b.renderer = r
		}
	}
}

// WithOutput sets where the rendered result is written.
func WithOutput(w io.Writer) Option {
	return func(b *Binding) {
		if w != nil {
			b.out = w
		}
	}
}

// WithRenderOptions sets the options passed to the renderer.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(b *Binding) {
		b.renderOptions = opts
	}
}

// Binding drives a screen from a terminal.
type Binding struct {
	driver        PromptDriver
	renderer      render.Renderer
	renderOptions render.RenderOptions
	out           io.Writer
}

// New builds a Binding. Without options it uses the survey driver and the
// text renderer on stdout.
func New(options ...Option) (*Binding, error) {
	b := &Binding{out: os.Stdout}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.driver == nil {
		b.driver = NewSurveyDriver(b.out)
	}
	if b.renderer == nil {
		r, err := render.NewText()
		if err != nil {
			return nil, err
		}
		b.renderer = r
	}
	return b, nil
}

// Run prompts every applicable field, submits the screen and prints the
// result. Local validation errors from the submission are reported and
// returned.
func (b *Binding) Run(ctx context.Context, s *screen.Screen) (model.DisplayModel, error) {
	if s == nil {
		return model.DisplayModel{}, ErrNoScreen
	}
	if err := b.Fill(ctx, s); err != nil {
		return model.DisplayModel{}, err
	}

	display, err := s.SubmitAndWait(ctx)
	if err != nil {
		_ = b.driver.Info(ctx, fmt.Sprintf("Cannot submit: %v", err))
		return model.DisplayModel{}, err
	}
	if err := b.Print(ctx, display); err != nil {
		return display, err
	}
	return display, nil
}

// Fill prompts the applicable fields in form order. Applicability is
// re-evaluated after each answer so a property type change hides the fields
// that no longer apply.
func (b *Binding) Fill(ctx context.Context, s *screen.Screen) error {
	for _, def := range schema.Fields() {
		if !def.AppliesTo(s.Features().PropertyType) {
			continue
		}
		if err := b.promptField(ctx, s, def); err != nil {
			return err
		}
	}
	return nil
}

// Print renders display to the binding output.
func (b *Binding) Print(ctx context.Context, display model.DisplayModel) error {
	out, err := b.renderer.Render(ctx, display, b.renderOptions)
	if err != nil {
		return err
	}
	_, err = b.out.Write(out)
	return err
}

func (b *Binding) promptField(ctx context.Context, s *screen.Screen, def schema.Field) error {
	for {
		current := form.Values(s.Features())[def.Name]
		ev, changed, err := b.ask(ctx, s, def, current)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if _, err := s.Apply(ev); err != nil {
			if errors.Is(err, screen.ErrClosed) {
				return err
			}
			_ = b.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", def.Label, err))
			continue
		}
		return nil
	}
}

// ask returns the edit event of one answer and whether it differs from the
// current value. Unchanged answers are not applied, so accepting a default
// coordinate does not count as a manual override.
func (b *Binding) ask(ctx context.Context, s *screen.Screen, def schema.Field, current any) (form.Event, bool, error) {
	switch def.Kind {
	case schema.KindEnum:
		idx, err := b.driver.Select(ctx, SelectConfig{
			Message:      def.Label,
			Options:      def.Enum,
			DefaultIndex: indexOf(def.Enum, fmt.Sprint(current)),
		})
		if err != nil {
			return form.Event{}, false, err
		}
		if idx < 0 || idx >= len(def.Enum) {
			return form.Event{}, false, fmt.Errorf("prompt: %s: choice %d out of range", def.Name, idx)
		}
		value := def.Enum[idx]
		return form.Set(def.Name, value), value != fmt.Sprint(current), nil

	case schema.KindBoolean:
		prev, _ := current.(bool)
		answer, err := b.driver.Confirm(ctx, ConfirmConfig{Message: def.Label, Default: prev})
		if err != nil {
			return form.Event{}, false, err
		}
		return form.Set(def.Name, answer), answer != prev, nil

	default:
		prev := formatValue(current)
		cfg := InputConfig{Message: def.Label, Default: prev}
		if def.Name == schema.FieldNeighborhood {
			if names := schema.Neighborhoods(s.Features().City); len(names) > 0 {
				cfg.Help = "e.g. " + strings.Join(names, ", ")
			}
		}
		answer, err := b.driver.Input(ctx, cfg)
		if err != nil {
			return form.Event{}, false, err
		}
		answer = strings.TrimSpace(answer)
		return form.Set(def.Name, answer), answer != prev, nil
	}
}

func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}

// Login prompts for credentials and signs in through provider. It prints the
// landing route of the new session.
func (b *Binding) Login(ctx context.Context, provider *auth.Provider) (auth.Session, error) {
	username, err := b.driver.Input(ctx, InputConfig{
		Message: "Username",
		Validator: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return auth.ErrCredentialsRequired
			}
			return nil
		},
	})
	if err != nil {
		return auth.Session{}, err
	}
	password, err := b.driver.Password(ctx, InputConfig{Message: "Password"})
	if err != nil {
		return auth.Session{}, err
	}

	session, err := provider.Login(ctx, username, password)
	if err != nil {
		_ = b.driver.Info(ctx, fmt.Sprintf("Login failed: %v", err))
		return auth.Session{}, err
	}
	_ = b.driver.Info(ctx, fmt.Sprintf("Signed in as %s (%s), continue at %s", session.Username, session.Role, auth.ResolveLandingRoute(session)))
	return session, nil
}
