package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/present"
	"github.com/goliatone/go-valuation/pkg/prompt"
	"github.com/goliatone/go-valuation/pkg/render"
	"github.com/goliatone/go-valuation/pkg/screen"
)

// setFlags collects repeated -set field=value pairs in order.
type setFlags []form.Event

func (s *setFlags) String() string {
	parts := make([]string, len(*s))
	for i, ev := range *s {
		parts[i] = ev.String()
	}
	return strings.Join(parts, ", ")
}

func (s *setFlags) Set(raw string) error {
	field, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(field) == "" {
		return fmt.Errorf("expected field=value, got %q", raw)
	}
	*s = append(*s, form.Set(strings.TrimSpace(field), value))
	return nil
}

func (e *env) predict(ctx context.Context, args []string) error {
	fs := e.flagSet("predict")
	var sets setFlags
	fs.Var(&sets, "set", "field=value edit, repeatable (e.g. -set city=Rabat -set sizeM2=95)")
	listing := fs.String("listing", "", "listing type: Buy or Rent (default from the page)")
	pageName := fs.String("page", screen.PredictPage.Name, "form page: predict, dashboard or analysis")
	interactive := fs.Bool("interactive", false, "prompt for every applicable field")
	format := fs.String("format", "text", "output format: text, html or json")
	token := fs.String("token", "", "bearer token (default VALUATION_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, ok := screen.LookupPage(*pageName)
	if !ok {
		return fmt.Errorf("unknown page %q", *pageName)
	}
	if *listing != "" {
		lt, err := model.ParseListingType(*listing)
		if err != nil {
			return err
		}
		page.ListingType = lt
	}

	renderers, err := render.NewDefaultRegistry()
	if err != nil {
		return err
	}
	renderer, err := renderers.Get(*format)
	if err != nil {
		return err
	}

	sc, err := screen.New(e.authorized(*token),
		screen.WithPage(page),
		screen.WithPresenter(present.New(present.WithLocale(e.cfg.Locale))),
		screen.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	defer sc.Close()

	if _, err := sc.Apply(sets...); err != nil {
		return err
	}

	binding, err := prompt.New(
		prompt.WithOutput(e.stdout),
		prompt.WithRenderer(renderer),
		prompt.WithRenderOptions(render.RenderOptions{Locale: e.cfg.Locale, ScreenID: sc.ID()}),
	)
	if err != nil {
		return err
	}
	if *interactive {
		_, err = binding.Run(ctx, sc)
		return err
	}

	display, err := sc.SubmitAndWait(ctx)
	if err != nil {
		return err
	}
	if err := binding.Print(ctx, display); err != nil {
		return err
	}
	if display.IsFailure() {
		return display.Failure
	}
	return nil
}
