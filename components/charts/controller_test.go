package charts

import (
	"bytes"
	"context"
	"io"
	"testing"
)

type stubRenderer struct {
	lastTemplate string
	lastData     any
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	r.lastData = data
	if len(out) > 0 && out[0] != nil {
		if _, err := out[0].Write([]byte("<html>page</html>")); err != nil {
			return "", err
		}
	}
	return "<html>page</html>", nil
}

func TestPageControllerRenderTemplate(t *testing.T) {
	sink := NewMemorySink()
	pipeline, err := NewPipeline(Options{
		Loader:   fakeLoader{ds: storeFixture()},
		Renderer: NewEChartsRenderer(sink),
		Config:   pipelineConfig(),
	})
	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}
	if err := pipeline.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	renderer := &stubRenderer{}
	controller, err := NewPageController(PageControllerOptions{
		Pipeline: pipeline,
		Sink:     sink,
		Renderer: renderer,
	})
	if err != nil {
		t.Fatalf("NewPageController returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := controller.RenderTemplate(context.Background(), &buf); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}
	if renderer.lastTemplate != "page" {
		t.Fatalf("expected page template, got %s", renderer.lastTemplate)
	}
	data, ok := renderer.lastData.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", renderer.lastData)
	}
	fragments, ok := data["charts"].([]map[string]any)
	if !ok {
		t.Fatalf("expected fragments slice, got %T", data["charts"])
	}
	if len(fragments) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(fragments))
	}
	if buf.Len() == 0 {
		t.Fatal("expected page markup written to the buffer")
	}
}

func TestPageControllerSkipsUnrenderedCharts(t *testing.T) {
	sink := NewMemorySink()
	pipeline, err := NewPipeline(Options{
		Loader:   fakeLoader{ds: storeFixture()},
		Renderer: NewEChartsRenderer(sink),
		Config:   pipelineConfig(),
		Viewport: viewportFunc(func(string, func()) func() { return func() {} }),
	})
	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}
	if err := pipeline.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	renderer := &stubRenderer{}
	controller, err := NewPageController(PageControllerOptions{
		Pipeline: pipeline,
		Sink:     sink,
		Renderer: renderer,
	})
	if err != nil {
		t.Fatalf("NewPageController returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := controller.RenderTemplate(context.Background(), &buf); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}
	data := renderer.lastData.(map[string]any)
	fragments := data["charts"].([]map[string]any)
	if len(fragments) != 0 {
		t.Fatalf("expected no fragments before any chart renders, got %d", len(fragments))
	}
}

func TestPageControllerRequiresPipelineAndSink(t *testing.T) {
	if _, err := NewPageController(PageControllerOptions{Sink: NewMemorySink()}); err == nil {
		t.Fatal("expected error without pipeline")
	}
	p, err := NewPipeline(Options{Loader: fakeLoader{}, Renderer: newFakeRenderer()})
	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}
	if _, err := NewPageController(PageControllerOptions{Pipeline: p}); err == nil {
		t.Fatal("expected error without sink")
	}
}
