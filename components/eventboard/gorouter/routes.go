package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-eventboard/components/eventboard"
	"github.com/goliatone/go-eventboard/components/eventboard/commands"
	"github.com/goliatone/go-eventboard/components/eventboard/httpapi"
	"github.com/goliatone/go-eventboard/components/eventboard/queries"
)

// Config wires go-router with the board controller, API, and broadcast hook.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *eventboard.Controller
	API        httpapi.Executor
	Broadcast  *eventboard.BroadcastHook
	Assets     fs.FS
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for board endpoints.
type RouteConfig struct {
	HTML      string
	Cards     string
	Refresh   string
	Activate  string
	WebSocket string
	Logos     string
}

// Register mounts board routes (HTML, JSON, commands, WebSocket, logos) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = cfg.Controller.BasePath()
	}
	api := cfg.API
	if api == nil {
		api = httpapi.NewCommandExecutor(cfg.Controller, nil)
	}
	assets := cfg.Assets
	if assets == nil {
		assets = eventboard.LogoAssetsFS()
	}

	cfg.Router.Get(routes.Logos, router.WrapHandler(func(ctx router.Context) error {
		return serveLogo(ctx, assets, ctx.Param("file"))
	}))

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderHTML(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Cards, router.WrapHandler(func(ctx router.Context) error {
		req := queries.BoardRequest{CardsOnly: ctx.Query("cards_only") == "true"}
		payload, err := api.Board(ctx.Context(), req)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	group.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshInput
		if body := ctx.Body(); len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	group.Post(routes.Activate, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ActivateCardInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Activate(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "pulsing"})
	}))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerWebSocket[T any](r router.Router[T], hook *eventboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		err := hook.Stream(ws.Context(), func(event eventboard.BoardEvent) error {
			return ws.WriteJSON(event)
		})
		if errors.Is(err, context.Canceled) {
			return ws.Close()
		}
		return err
	})
}

func serveLogo(ctx router.Context, assets fs.FS, file string) error {
	file = path.Clean("/" + file)[1:]
	if file == "" || strings.Contains(file, "/") {
		return respondError(ctx, http.StatusNotFound, errors.New("logo not found"))
	}
	data, err := fs.ReadFile(assets, file)
	if err != nil {
		return respondError(ctx, http.StatusNotFound, errors.New("logo not found"))
	}
	contentType := mime.TypeByExtension(path.Ext(file))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.SetHeader("Content-Type", contentType)
	ctx.SetHeader("Cache-Control", "public, max-age=86400")
	return ctx.Send(data)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.Cards == "" {
		routes.Cards = "/_cards"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/refresh"
	}
	if routes.Activate == "" {
		routes.Activate = "/activate"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	if routes.Logos == "" {
		routes.Logos = eventboard.LogoAssetsPath + ":file"
	}
	return routes
}
