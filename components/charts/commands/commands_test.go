package commands

import (
	"context"
	"errors"
	"testing"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

type fakePipeline struct {
	calls []string
	err   error
}

func (f *fakePipeline) SetMode(_ context.Context, mode charts.Mode) error {
	f.calls = append(f.calls, "mode:"+string(mode))
	return f.err
}

func (f *fakePipeline) SetHorizon(_ context.Context, months int) error {
	f.calls = append(f.calls, "horizon")
	return f.err
}

func (f *fakePipeline) SetFilter(_ context.Context, key string) error {
	f.calls = append(f.calls, "filter:"+key)
	return f.err
}

func (f *fakePipeline) SetFilterGroup(_ context.Context, group string) error {
	f.calls = append(f.calls, "group:"+group)
	return f.err
}

func (f *fakePipeline) SetCategory(_ context.Context, key string) error {
	f.calls = append(f.calls, "category:"+key)
	return f.err
}

func (f *fakePipeline) SetCity(_ context.Context, key string) error {
	f.calls = append(f.calls, "city:"+key)
	return f.err
}

func (f *fakePipeline) RevealAll(context.Context) error {
	f.calls = append(f.calls, "reveal")
	return f.err
}

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}

func TestSetModeCommandDelegates(t *testing.T) {
	pipeline := &fakePipeline{}
	telemetry := &recordingTelemetry{}
	cmd := NewSetModeCommand(pipeline, telemetry)

	if err := cmd.Execute(context.Background(), SetModeInput{Mode: charts.ModeShare}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(pipeline.calls) != 1 || pipeline.calls[0] != "mode:share" {
		t.Fatalf("unexpected calls: %v", pipeline.calls)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "charts.command.mode" {
		t.Fatalf("unexpected telemetry: %v", telemetry.events)
	}
}

func TestCommandsPropagateErrors(t *testing.T) {
	pipeline := &fakePipeline{err: errors.New("boom")}
	telemetry := &recordingTelemetry{}
	ctx := context.Background()

	if err := NewSetModeCommand(pipeline, telemetry).Execute(ctx, SetModeInput{Mode: charts.ModeRaw}); err == nil {
		t.Fatal("expected mode error")
	}
	if err := NewSetHorizonCommand(pipeline, telemetry).Execute(ctx, SetHorizonInput{Months: 12}); err == nil {
		t.Fatal("expected horizon error")
	}
	if err := NewSetFilterCommand(pipeline, telemetry).Execute(ctx, SetFilterInput{Key: "x"}); err == nil {
		t.Fatal("expected filter error")
	}
	if err := NewSetFilterGroupCommand(pipeline, telemetry).Execute(ctx, SetFilterGroupInput{Group: "g"}); err == nil {
		t.Fatal("expected filter group error")
	}
	if err := NewSetCategoryCommand(pipeline, telemetry).Execute(ctx, SetCategoryInput{Key: "c"}); err == nil {
		t.Fatal("expected category error")
	}
	if err := NewSetCityCommand(pipeline, telemetry).Execute(ctx, SetCityInput{Key: "NYC"}); err == nil {
		t.Fatal("expected city error")
	}
	if err := NewRevealAllCommand(pipeline, telemetry).Execute(ctx, RevealAllInput{}); err == nil {
		t.Fatal("expected reveal error")
	}
	if len(telemetry.events) != 0 {
		t.Fatalf("failed commands must not emit telemetry, got %v", telemetry.events)
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewSetModeCommand(nil, nil).Execute(ctx, SetModeInput{}); err == nil {
		t.Fatal("expected error without pipeline")
	}
	if err := NewRevealAllCommand(nil, nil).Execute(ctx, RevealAllInput{}); err == nil {
		t.Fatal("expected error without pipeline")
	}
}

func TestEveryCommandDelegates(t *testing.T) {
	pipeline := &fakePipeline{}
	ctx := context.Background()

	_ = NewSetHorizonCommand(pipeline, nil).Execute(ctx, SetHorizonInput{Months: 6})
	_ = NewSetFilterCommand(pipeline, nil).Execute(ctx, SetFilterInput{Key: "CES6054"})
	_ = NewSetFilterGroupCommand(pipeline, nil).Execute(ctx, SetFilterGroupInput{Group: "industry"})
	_ = NewSetCategoryCommand(pipeline, nil).Execute(ctx, SetCategoryInput{Key: "prof"})
	_ = NewSetCityCommand(pipeline, nil).Execute(ctx, SetCityInput{Key: "NYC"})
	_ = NewRevealAllCommand(pipeline, nil).Execute(ctx, RevealAllInput{})

	want := []string{"horizon", "filter:CES6054", "group:industry", "category:prof", "city:NYC", "reveal"}
	if len(pipeline.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", pipeline.calls, want)
	}
	for i := range want {
		if pipeline.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", pipeline.calls, want)
		}
	}
}
