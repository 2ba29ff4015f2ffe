package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
	"github.com/andreadrechsler18/ndrechslermacrocharts/components/charts/commands"
	"github.com/andreadrechsler18/ndrechslermacrocharts/components/charts/httpapi"
)

// Config wires go-router with the charts pipeline, page controller, command
// API, and broadcast hook.
type Config[T any] struct {
	Router     router.Router[T]
	Pipeline   *charts.Pipeline
	Controller *charts.PageController
	Sink       *charts.MemorySink
	API        httpapi.Executor
	Broadcast  *charts.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for chart endpoints.
type RouteConfig struct {
	HTML        string
	State       string
	Fragment    string
	Mode        string
	Horizon     string
	Filter      string
	FilterGroup string
	Category    string
	City        string
	Reveal      string
	WebSocket   string
}

// Register mounts chart routes (HTML, JSON, commands, WebSocket) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Pipeline == nil {
		return errors.New("gorouter: pipeline is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/charts"
	}

	group := cfg.Router.Group(base)

	if cfg.Controller != nil {
		group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			var buf bytes.Buffer
			if err := cfg.Controller.RenderTemplate(ctx.Context(), &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		summary, err := cfg.Pipeline.Summary()
		if err != nil {
			return respondError(ctx, http.StatusServiceUnavailable, err)
		}
		return ctx.JSON(http.StatusOK, summary)
	}))

	if cfg.Sink != nil {
		group.Get(routes.Fragment, router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("id")
			if id == "" {
				return respondError(ctx, http.StatusBadRequest, errors.New("chart id is required"))
			}
			html, ok := cfg.Sink.Fragment(id)
			if !ok {
				return respondError(ctx, http.StatusNotFound, errors.New("chart not rendered"))
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send([]byte(html))
		}))
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Mode, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetModeInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Mode(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Horizon, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetHorizonInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Horizon(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Filter, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetFilterInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Filter(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.FilterGroup, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetFilterGroupInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.FilterGroup(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Category, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetCategoryInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Category(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.City, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetCityInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.City(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Reveal, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Reveal(ctx.Context(), commands.RevealAllInput{}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *charts.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/page"
	}
	if routes.State == "" {
		routes.State = "/state"
	}
	if routes.Fragment == "" {
		routes.Fragment = "/fragment/:id"
	}
	if routes.Mode == "" {
		routes.Mode = "/view/mode"
	}
	if routes.Horizon == "" {
		routes.Horizon = "/view/horizon"
	}
	if routes.Filter == "" {
		routes.Filter = "/view/filter"
	}
	if routes.FilterGroup == "" {
		routes.FilterGroup = "/view/filter-group"
	}
	if routes.Category == "" {
		routes.Category = "/view/category"
	}
	if routes.City == "" {
		routes.City = "/view/city"
	}
	if routes.Reveal == "" {
		routes.Reveal = "/view/reveal"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
