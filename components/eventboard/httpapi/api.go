package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-eventboard/components/eventboard"
	"github.com/goliatone/go-eventboard/components/eventboard/commands"
	"github.com/goliatone/go-eventboard/components/eventboard/queries"
)

// Executor runs board commands and queries for transports.
type Executor interface {
	Refresh(ctx context.Context, input commands.RefreshInput) error
	Activate(ctx context.Context, input commands.ActivateCardInput) error
	Board(ctx context.Context, req queries.BoardRequest) (eventboard.BoardPayload, error)
}

// CommandExecutor adapts go-command commanders/queriers to Executor.
type CommandExecutor struct {
	RefreshCommander  gocommand.Commander[commands.RefreshInput]
	ActivateCommander gocommand.Commander[commands.ActivateCardInput]
	BoardQuerier      gocommand.Querier[queries.BoardRequest, eventboard.BoardPayload]
}

// NewCommandExecutor wires the default commands and query to a controller.
func NewCommandExecutor(board *eventboard.Controller, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		RefreshCommander:  commands.NewRefreshCommand(board, telemetry),
		ActivateCommander: commands.NewActivateCardCommand(board, telemetry),
		BoardQuerier:      queries.NewBoardQuery(board),
	}
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshInput) error {
	if e.RefreshCommander == nil {
		return errors.New("httpapi: refresh commander not configured")
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Activate(ctx context.Context, input commands.ActivateCardInput) error {
	if e.ActivateCommander == nil {
		return errors.New("httpapi: activate commander not configured")
	}
	return e.ActivateCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Board(ctx context.Context, req queries.BoardRequest) (eventboard.BoardPayload, error) {
	if e.BoardQuerier == nil {
		return eventboard.BoardPayload{}, errors.New("httpapi: board querier not configured")
	}
	return e.BoardQuerier.Query(ctx, req)
}

// HTMLRenderer renders the board page.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, out io.Writer) error
}

// Handlers exposes net/http endpoints backed by the shared executor.
type Handlers struct {
	API       Executor
	HTML      HTMLRenderer
	Broadcast *eventboard.BroadcastHook
}

// Register mounts the board routes on mux under base.
func (h *Handlers) Register(mux *http.ServeMux, base string) {
	base = strings.TrimRight(base, "/")
	if base == "" {
		mux.HandleFunc("GET /{$}", h.HandleBoard)
	} else {
		mux.HandleFunc("GET "+base, h.HandleBoard)
	}
	mux.HandleFunc("GET "+base+"/_cards", h.HandleCards)
	mux.HandleFunc("POST "+base+"/refresh", h.HandleRefresh)
	mux.HandleFunc("POST "+base+"/activate", h.HandleActivate)
	if h.Broadcast != nil {
		mux.HandleFunc("GET "+base+"/events", h.Broadcast.ServeSSE)
		mux.HandleFunc("GET "+base+"/ws", h.Broadcast.ServeWebSocket)
	}
	mux.Handle("GET "+eventboard.LogoAssetsPath, eventboard.LogoAssetsHandler(eventboard.LogoAssetsPath))
}

func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	if h.HTML == nil {
		http.Error(w, "board renderer not configured", http.StatusNotImplemented)
		return
	}
	var buf strings.Builder
	if err := h.HTML.RenderHTML(r.Context(), &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

func (h *Handlers) HandleCards(w http.ResponseWriter, r *http.Request) {
	req := queries.BoardRequest{CardsOnly: r.URL.Query().Get("cards_only") == "true"}
	payload, err := h.API.Board(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) HandleActivate(w http.ResponseWriter, r *http.Request) {
	var payload commands.ActivateCardInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Activate(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pulsing"})
}

// StatusFor maps board errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, eventboard.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrMissingEventName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
