package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
	"github.com/andreadrechsler18/ndrechslermacrocharts/components/charts/commands"
)

type stubExecutor struct {
	calls []string
	err   error
}

func (s *stubExecutor) Mode(_ context.Context, input commands.SetModeInput) error {
	s.calls = append(s.calls, "mode:"+string(input.Mode))
	return s.err
}

func (s *stubExecutor) Horizon(_ context.Context, input commands.SetHorizonInput) error {
	s.calls = append(s.calls, "horizon")
	return s.err
}

func (s *stubExecutor) Filter(_ context.Context, input commands.SetFilterInput) error {
	s.calls = append(s.calls, "filter:"+input.Key)
	return s.err
}

func (s *stubExecutor) FilterGroup(_ context.Context, input commands.SetFilterGroupInput) error {
	s.calls = append(s.calls, "group:"+input.Group)
	return s.err
}

func (s *stubExecutor) Category(_ context.Context, input commands.SetCategoryInput) error {
	s.calls = append(s.calls, "category:"+input.Key)
	return s.err
}

func (s *stubExecutor) City(_ context.Context, input commands.SetCityInput) error {
	s.calls = append(s.calls, "city:"+input.Key)
	return s.err
}

func (s *stubExecutor) Reveal(context.Context, commands.RevealAllInput) error {
	s.calls = append(s.calls, "reveal")
	return s.err
}

func TestHandleSetMode(t *testing.T) {
	executor := &stubExecutor{}
	handlers := &Handlers{API: executor}

	req := httptest.NewRequest(http.MethodPost, "/view/mode", strings.NewReader(`{"mode":"yoy"}`))
	rec := httptest.NewRecorder()
	handlers.HandleSetMode(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(executor.calls) != 1 || executor.calls[0] != "mode:yoy" {
		t.Fatalf("unexpected calls: %v", executor.calls)
	}
}

func TestHandleSetModeBadJSON(t *testing.T) {
	handlers := &Handlers{API: &stubExecutor{}}

	req := httptest.NewRequest(http.MethodPost, "/view/mode", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handlers.HandleSetMode(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSetModeShareConflict(t *testing.T) {
	executor := &stubExecutor{err: charts.ErrShareNeedsCategory}
	handlers := &Handlers{API: executor}

	req := httptest.NewRequest(http.MethodPost, "/view/mode", strings.NewReader(`{"mode":"share"}`))
	rec := httptest.NewRecorder()
	handlers.HandleSetMode(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for share without category, got %d", rec.Code)
	}
}

func TestHandleRevealAll(t *testing.T) {
	executor := &stubExecutor{}
	handlers := &Handlers{API: executor}

	req := httptest.NewRequest(http.MethodPost, "/view/reveal", nil)
	rec := httptest.NewRecorder()
	handlers.HandleRevealAll(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(executor.calls) != 1 || executor.calls[0] != "reveal" {
		t.Fatalf("unexpected calls: %v", executor.calls)
	}
}

func TestHandlersCoverEveryCommand(t *testing.T) {
	executor := &stubExecutor{}
	handlers := &Handlers{API: executor}

	post := func(handler func(http.ResponseWriter, *http.Request), body string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	if code := post(handlers.HandleSetHorizon, `{"months":24}`); code != http.StatusOK {
		t.Fatalf("horizon: expected 200, got %d", code)
	}
	if code := post(handlers.HandleSetFilter, `{"key":"CES6054"}`); code != http.StatusOK {
		t.Fatalf("filter: expected 200, got %d", code)
	}
	if code := post(handlers.HandleSetFilterGroup, `{"group":"industry"}`); code != http.StatusOK {
		t.Fatalf("filter group: expected 200, got %d", code)
	}
	if code := post(handlers.HandleSetCategory, `{"key":"prof"}`); code != http.StatusOK {
		t.Fatalf("category: expected 200, got %d", code)
	}
	if code := post(handlers.HandleSetCity, `{"key":"NYC"}`); code != http.StatusOK {
		t.Fatalf("city: expected 200, got %d", code)
	}

	want := []string{"horizon", "filter:CES6054", "group:industry", "category:prof", "city:NYC"}
	if len(executor.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", executor.calls, want)
	}
}

func TestStatusFor(t *testing.T) {
	if got := StatusFor(charts.ErrShareNeedsCategory); got != http.StatusConflict {
		t.Fatalf("expected 409, got %d", got)
	}
	if got := StatusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}
