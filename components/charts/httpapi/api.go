package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
	"github.com/andreadrechsler18/ndrechslermacrocharts/components/charts/commands"
)

// Executor is the view-command surface transports invoke. Both the plain
// HTTP handlers and the go-router registration consume it.
type Executor interface {
	Mode(ctx context.Context, input commands.SetModeInput) error
	Horizon(ctx context.Context, input commands.SetHorizonInput) error
	Filter(ctx context.Context, input commands.SetFilterInput) error
	FilterGroup(ctx context.Context, input commands.SetFilterGroupInput) error
	Category(ctx context.Context, input commands.SetCategoryInput) error
	City(ctx context.Context, input commands.SetCityInput) error
	Reveal(ctx context.Context, input commands.RevealAllInput) error
}

// CommandExecutor bundles the individual commands behind the Executor
// interface.
type CommandExecutor struct {
	ModeCmd        gocommand.Commander[commands.SetModeInput]
	HorizonCmd     gocommand.Commander[commands.SetHorizonInput]
	FilterCmd      gocommand.Commander[commands.SetFilterInput]
	FilterGroupCmd gocommand.Commander[commands.SetFilterGroupInput]
	CategoryCmd    gocommand.Commander[commands.SetCategoryInput]
	CityCmd        gocommand.Commander[commands.SetCityInput]
	RevealCmd      gocommand.Commander[commands.RevealAllInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every view command against the same pipeline.
func NewCommandExecutor(pipeline *charts.Pipeline, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		ModeCmd:        commands.NewSetModeCommand(pipeline, telemetry),
		HorizonCmd:     commands.NewSetHorizonCommand(pipeline, telemetry),
		FilterCmd:      commands.NewSetFilterCommand(pipeline, telemetry),
		FilterGroupCmd: commands.NewSetFilterGroupCommand(pipeline, telemetry),
		CategoryCmd:    commands.NewSetCategoryCommand(pipeline, telemetry),
		CityCmd:        commands.NewSetCityCommand(pipeline, telemetry),
		RevealCmd:      commands.NewRevealAllCommand(pipeline, telemetry),
	}
}

func (e *CommandExecutor) Mode(ctx context.Context, input commands.SetModeInput) error {
	return e.ModeCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Horizon(ctx context.Context, input commands.SetHorizonInput) error {
	return e.HorizonCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Filter(ctx context.Context, input commands.SetFilterInput) error {
	return e.FilterCmd.Execute(ctx, input)
}

func (e *CommandExecutor) FilterGroup(ctx context.Context, input commands.SetFilterGroupInput) error {
	return e.FilterGroupCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Category(ctx context.Context, input commands.SetCategoryInput) error {
	return e.CategoryCmd.Execute(ctx, input)
}

func (e *CommandExecutor) City(ctx context.Context, input commands.SetCityInput) error {
	return e.CityCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Reveal(ctx context.Context, input commands.RevealAllInput) error {
	return e.RevealCmd.Execute(ctx, input)
}

// StatusFor maps a command failure to an HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, charts.ErrShareNeedsCategory) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	API Executor
}

func (h *Handlers) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetModeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Mode(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetHorizon(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetHorizonInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Horizon(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetFilterInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Filter(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetFilterGroup(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetFilterGroupInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.FilterGroup(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetCategory(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Category(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetCity(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetCityInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.City(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRevealAll(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Reveal(r.Context(), commands.RevealAllInput{}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
