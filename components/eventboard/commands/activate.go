package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

// ErrMissingEventName is returned when no card name is supplied.
var ErrMissingEventName = errors.New("activate command requires event name")

// ActivateCardInput identifies the card that was clicked.
type ActivateCardInput struct {
	EventName string `json:"event_name"`
}

type cardActivator interface {
	ActivateCard(ctx context.Context, name string) error
}

// ActivateCardCommand pulses a card's count display.
type ActivateCardCommand struct {
	board     cardActivator
	telemetry commandTelemetry
}

// NewActivateCardCommand creates the command.
func NewActivateCardCommand(board cardActivator, telemetry Telemetry) *ActivateCardCommand {
	return &ActivateCardCommand{board: board, telemetry: newCommandTelemetry(telemetry, "activate")}
}

var _ gocommand.Commander[ActivateCardInput] = (*ActivateCardCommand)(nil)

// Execute activates the card.
func (c *ActivateCardCommand) Execute(ctx context.Context, msg ActivateCardInput) error {
	if c.board == nil {
		return errors.New("activate command requires board")
	}
	name := strings.TrimSpace(msg.EventName)
	if name == "" {
		return ErrMissingEventName
	}
	if err := c.board.ActivateCard(ctx, name); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "eventboard.card.activated", map[string]any{"event_name": name})
	return nil
}
