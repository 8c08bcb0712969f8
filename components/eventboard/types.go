package eventboard

import (
	"context"
	"time"
)

// Source reads the latest registration snapshot from an upstream service.
// Implementations must be safe for concurrent use; overlapping polls call
// FetchSnapshot from separate goroutines.
type Source interface {
	Endpoint() string
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}

// RefreshHook notifies transports (SSE/WebSocket) about board changes.
type RefreshHook interface {
	BoardUpdated(ctx context.Context, event BoardEvent) error
}

// DataOrigin records where the snapshot on screen came from.
type DataOrigin string

const (
	OriginNone   DataOrigin = "none"
	OriginRemote DataOrigin = "remote"
	OriginDemo   DataOrigin = "demo"
)

// UIState captures the transient flags the board template reacts to.
type UIState struct {
	ErrorVisible   bool       `json:"error_visible"`
	LoadingVisible bool       `json:"loading_visible"`
	LastUpdated    *time.Time `json:"last_updated,omitempty"`
	Origin         DataOrigin `json:"origin"`
	LastError      string     `json:"last_error,omitempty"`
}

// Card is the render descriptor for a single event registration count.
type Card struct {
	EventName      string        `json:"event_name"`
	Count          int           `json:"count"`
	LogoPath       string        `json:"logo_path"`
	DisplayIndex   int           `json:"display_index"`
	AnimationDelay time.Duration `json:"animation_delay"`
	Pulsing        bool          `json:"pulsing"`
}

// BoardPayload is the JSON representation of the rendered board.
type BoardPayload struct {
	Cards           []Card   `json:"cards"`
	State           UIState  `json:"state"`
	Snapshot        Snapshot `json:"snapshot"`
	LastUpdatedText string   `json:"last_updated_text,omitempty"`
}

// Board event types published through the RefreshHook.
const (
	EventSnapshotUpdated = "snapshot.updated"
	EventSnapshotError   = "snapshot.error"
	EventDemoLoaded      = "snapshot.demo"
	EventCardPulse       = "card.pulse"
	EventCardPulseEnd    = "card.pulse_end"
	// EventBoardSync is sent only to a new subscriber and carries the latest
	// board state so a freshly opened page can catch up.
	EventBoardSync = "board.sync"
)

// BoardEvent describes changes that transports might care about.
type BoardEvent struct {
	Type      string  `json:"type"`
	AttemptID string  `json:"attempt_id,omitempty"`
	Card      string  `json:"card,omitempty"`
	Cards     []Card  `json:"cards,omitempty"`
	State     UIState `json:"state"`
	// LastUpdatedText is the formatted label shown under the heading.
	LastUpdatedText string    `json:"last_updated_text,omitempty"`
	At              time.Time `json:"at"`
}
