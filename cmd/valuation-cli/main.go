package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-valuation/internal/config"
	"github.com/goliatone/go-valuation/internal/logging"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/prompt"
)

const usage = `usage: valuation-cli <command> [flags]

commands:
  predict   fill the valuation form and print the estimate
  login     sign in and print the session token
  analysis  print the market analysis (needs -token or VALUATION_TOKEN)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		if errors.Is(err, prompt.ErrAborted) {
			os.Exit(130)
		}
		log.Fatal(err)
	}
}

// env carries what every command needs.
type env struct {
	cfg    *config.Config
	client *client.Client
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(logging.Console(logging.Options{Writer: stderr, Level: cfg.Log.Level, Format: cfg.Log.Format}))
	e := &env{
		cfg: cfg,
		client: client.New(
			client.WithBaseURL(cfg.APIURL),
			client.WithTimeout(cfg.Timeout),
			client.WithLogger(logger),
		),
		logger: logger,
		stdout: stdout,
		stderr: stderr,
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "predict":
		return e.predict(ctx, rest)
	case "login":
		return e.login(ctx, rest)
	case "analysis":
		return e.analysis(ctx, rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}
