package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/present"
	"github.com/goliatone/go-valuation/pkg/prompt"
	"github.com/goliatone/go-valuation/pkg/render"
)

// authorized returns the client with token, falling back to VALUATION_TOKEN.
func (e *env) authorized(token string) *client.Client {
	if strings.TrimSpace(token) == "" {
		token = os.Getenv("VALUATION_TOKEN")
	}
	if strings.TrimSpace(token) == "" {
		return e.client
	}
	return e.client.WithToken(strings.TrimSpace(token))
}

func (e *env) login(ctx context.Context, args []string) error {
	fs := e.flagSet("login")
	username := fs.String("username", "", "username; prompts when empty")
	password := fs.String("password", "", "password; prompts when username is empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	provider := auth.NewProvider(e.client, auth.WithLogger(e.logger))
	var (
		session auth.Session
		err     error
	)
	if *username == "" {
		binding, berr := prompt.New(prompt.WithOutput(e.stderr))
		if berr != nil {
			return berr
		}
		session, err = binding.Login(ctx, provider)
	} else {
		session, err = provider.Login(ctx, *username, *password)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, session.Token)
	fmt.Fprintf(e.stderr, "signed in as %s (%s), landing %s\n", session.Username, session.Role, auth.ResolveLandingRoute(session))
	return nil
}

func (e *env) analysis(ctx context.Context, args []string) error {
	fs := e.flagSet("analysis")
	token := fs.String("token", "", "bearer token (default VALUATION_TOKEN)")
	format := fs.String("format", "text", "output format: text, html or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := e.authorized(*token)
	if c == e.client {
		return fmt.Errorf("analysis needs a session: run %q and pass -token", "valuation-cli login")
	}

	result, err := c.Analysis(ctx)
	if err != nil {
		return err
	}
	p := present.New(present.WithLocale(e.cfg.Locale))
	view := p.Analysis(result)

	renderers, err := render.NewDefaultRegistry()
	if err != nil {
		return err
	}
	renderer, err := renderers.Get(*format)
	if err != nil {
		return err
	}
	ar, ok := renderer.(render.AnalysisRenderer)
	if !ok {
		return fmt.Errorf("format %q cannot render an analysis", *format)
	}
	out, err := ar.RenderAnalysis(ctx, view, render.RenderOptions{Locale: p.Locale()})
	if err != nil {
		return err
	}
	_, err = e.stdout.Write(out)
	return err
}
