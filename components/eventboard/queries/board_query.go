package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-eventboard/components/eventboard"
)

// BoardRequest selects what the board query returns.
type BoardRequest struct {
	// CardsOnly drops the snapshot and state from the payload.
	CardsOnly bool
}

type boardReader interface {
	Payload() eventboard.BoardPayload
}

// BoardQuery executes read-only board projection.
type BoardQuery struct {
	board boardReader
}

// NewBoardQuery builds the query.
func NewBoardQuery(board boardReader) *BoardQuery {
	return &BoardQuery{board: board}
}

var _ gocommand.Querier[BoardRequest, eventboard.BoardPayload] = (*BoardQuery)(nil)

// Query returns the current board payload.
func (q *BoardQuery) Query(_ context.Context, req BoardRequest) (eventboard.BoardPayload, error) {
	payload := q.board.Payload()
	if req.CardsOnly {
		return eventboard.BoardPayload{Cards: payload.Cards}, nil
	}
	return payload, nil
}
