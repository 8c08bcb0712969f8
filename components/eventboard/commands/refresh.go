package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshInput requests a manual poll.
type RefreshInput struct {
	// Wait blocks until the poll resolves; otherwise it runs in the background.
	Wait bool `json:"wait"`
}

type refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshCommand triggers a poll outside the regular schedule.
type RefreshCommand struct {
	board     refresher
	telemetry commandTelemetry
}

// NewRefreshCommand creates the command.
func NewRefreshCommand(board refresher, telemetry Telemetry) *RefreshCommand {
	return &RefreshCommand{board: board, telemetry: newCommandTelemetry(telemetry, "refresh")}
}

var _ gocommand.Commander[RefreshInput] = (*RefreshCommand)(nil)

// Execute runs the poll. Poll failures are handled by the board (error
// banner, demo fallback) and are not reported as command failures.
func (c *RefreshCommand) Execute(ctx context.Context, msg RefreshInput) error {
	if c.board == nil {
		return errors.New("refresh command requires board")
	}
	if msg.Wait {
		_ = c.board.Refresh(ctx)
	} else {
		go func() {
			_ = c.board.Refresh(context.WithoutCancel(ctx))
		}()
	}
	c.telemetry.Record(ctx, "eventboard.refresh", map[string]any{"wait": msg.Wait})
	return nil
}
