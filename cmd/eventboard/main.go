package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-eventboard/pkg/eventboard"
)

// Globals are flags shared by every subcommand.
type Globals struct {
	Config   string `short:"c" type:"path" help:"Path to the board YAML config file."`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug|info|warn|error)."`
	Dev      bool   `help:"Use human-readable development logging."`
}

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" help:"Poll the registration endpoint and serve the board."`
	Snapshot snapshotCmd `cmd:"" help:"Fetch once and print the rendered cards."`
	Logos    logosCmd    `cmd:"" help:"Manage the logo mapping file."`
}

func main() {
	var app cli
	parser, err := newParser(context.Background(), os.Stdout, &app)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run())
}

// newParser builds the kong parser. ctx and out are bound under their
// interface types so Run methods can ask for context.Context and io.Writer.
func newParser(ctx context.Context, out io.Writer, app *cli, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("eventboard"),
		kong.Description("Event registration board: polls a JSON endpoint and renders animated cards."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(out, (*io.Writer)(nil)),
		kong.Bind(&app.Globals),
	}, options...)
	return kong.New(app, options...)
}

// load reads the config file and env overrides, applying the CLI log level.
func (g *Globals) load() (eventboard.Config, error) {
	cfg, err := eventboard.LoadConfig(g.Config)
	if err != nil {
		return eventboard.Config{}, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
		if err := cfg.Validate(); err != nil {
			return eventboard.Config{}, err
		}
	}
	return cfg, nil
}

func newLogger(level string, dev bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("eventboard: log level: %w", err)
		}
		lvl = parsed
	}
	var zcfg zap.Config
	if dev {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
