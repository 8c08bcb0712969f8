package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	core "github.com/goliatone/go-eventboard/components/eventboard"
	"github.com/goliatone/go-eventboard/pkg/eventboard"
)

type snapshotCmd struct {
	Endpoint string `help:"Registration endpoint URL (overrides config)."`
	Format   string `enum:"yaml,json" default:"yaml" help:"Output format (yaml|json)."`
}

type snapshotCard struct {
	Event string `json:"event" yaml:"event"`
	Count int    `json:"count" yaml:"count"`
	Logo  string `json:"logo" yaml:"logo"`
}

type snapshotOutput struct {
	Origin      string         `json:"origin" yaml:"origin"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	LastUpdated string         `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	Cards       []snapshotCard `json:"cards" yaml:"cards"`
}

func (cmd *snapshotCmd) Run(ctx context.Context, globals *Globals, out io.Writer) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if cmd.Endpoint != "" {
		cfg.Endpoint = cmd.Endpoint
	}
	logger, err := newLogger(cfg.LogLevel, globals.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	board, err := eventboard.New(cfg, logger)
	if err != nil {
		return err
	}
	defer board.Controller.Close()

	// Failures fall back to demo data and are reported in the output.
	if err := board.Controller.FetchSnapshot(ctx); err != nil {
		logger.Debug("snapshot fetch failed", zap.Error(err))
	}
	return writeSnapshot(out, cmd.Format, board.Controller.Payload())
}

func writeSnapshot(out io.Writer, format string, payload core.BoardPayload) error {
	doc := snapshotOutput{
		Origin:      string(payload.State.Origin),
		Error:       payload.State.LastError,
		LastUpdated: payload.LastUpdatedText,
		Cards:       make([]snapshotCard, 0, len(payload.Cards)),
	}
	for _, card := range payload.Cards {
		doc.Cards = append(doc.Cards, snapshotCard{Event: card.EventName, Count: card.Count, Logo: card.LogoPath})
	}
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case "yaml", "":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(doc)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
