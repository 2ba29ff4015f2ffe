package charts

import (
	"context"
	"fmt"
	"io"
)

const defaultPageTemplate = "page"

// PageControllerOptions wires a PageController.
type PageControllerOptions struct {
	Pipeline *Pipeline
	Sink     *MemorySink
	Renderer Renderer
	Template string
}

// PageController assembles the full HTML page: it collects rendered fragments
// for the visible charts from the sink and hands them to the template
// renderer.
type PageController struct {
	pipeline *Pipeline
	sink     *MemorySink
	renderer Renderer
	template string
}

// NewPageController wires the pipeline, sink, and template renderer together.
func NewPageController(opts PageControllerOptions) (*PageController, error) {
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("charts: page controller needs a pipeline")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("charts: page controller needs a memory sink")
	}
	if opts.Renderer == nil {
		renderer, err := NewTemplateRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = renderer
	}
	if opts.Template == "" {
		opts.Template = defaultPageTemplate
	}
	return &PageController{
		pipeline: opts.Pipeline,
		sink:     opts.Sink,
		renderer: opts.Renderer,
		template: opts.Template,
	}, nil
}

// RenderTemplate writes the page HTML for the current view state. Visible
// charts that have not been drawn yet are skipped; they appear on the next
// render once the scheduler reaches them.
func (c *PageController) RenderTemplate(_ context.Context, out io.Writer) error {
	summary, err := c.pipeline.Summary()
	if err != nil {
		return err
	}

	fragments := make([]map[string]any, 0)
	for _, index := range c.pipeline.VisibleIndices() {
		id := c.pipeline.ContainerID(index)
		html, ok := c.sink.Fragment(id)
		if !ok {
			continue
		}
		fragments = append(fragments, map[string]any{
			"id":   id,
			"html": html,
		})
	}

	data := map[string]any{
		"title":   summary.Title,
		"mode":    string(summary.Mode),
		"horizon": summary.Horizon,
		"unit":    summary.Unit,
		"charts":  fragments,
	}
	_, err = c.renderer.Render(c.template, data, out)
	return err
}
