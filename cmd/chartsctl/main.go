package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"gopkg.in/yaml.v3"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
	"github.com/andreadrechsler18/ndrechslermacrocharts/components/charts/gorouter"
	"github.com/andreadrechsler18/ndrechslermacrocharts/components/charts/httpapi"
)

type cli struct {
	Validate validateCmd `cmd:"" help:"Validate a page manifest without fetching data."`
	Render   renderCmd   `cmd:"" help:"Render every chart of a page to static HTML."`
	Serve    serveCmd    `cmd:"" help:"Serve a chart page with live view commands."`
}

type validateCmd struct {
	Manifest string `arg:"" type:"path" help:"Path to the page manifest YAML."`
}

type renderCmd struct {
	Manifest string `arg:"" type:"path" help:"Path to the page manifest YAML."`
	Out      string `default:"dist" type:"path" help:"Output directory for page and fragments."`
	Mode     string `help:"Override the manifest's default display mode."`
	Horizon  int    `default:"-1" help:"Override the manifest's default horizon in months."`
}

type serveCmd struct {
	Manifest string `type:"path" help:"Path to the page manifest YAML (defaults to the built-in page)."`
	Addr     string `default:":8080" help:"Listen address."`
	Base     string `default:"/charts" help:"Base path for mounted routes."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Chart page utility: validate manifests, build static pages, serve live pages."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *validateCmd) Run(_ context.Context) error {
	data, err := os.ReadFile(cmd.Manifest)
	if err != nil {
		return fmt.Errorf("chartsctl: read manifest: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("chartsctl: parse manifest: %w", err)
	}
	if err := charts.NewManifestValidator().Validate(raw); err != nil {
		return err
	}
	if _, err := charts.ReadPageManifest(cmd.Manifest); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s is valid\n", cmd.Manifest)
	return nil
}

func (cmd *renderCmd) Run(ctx context.Context) error {
	doc, err := charts.ReadPageManifest(cmd.Manifest)
	if err != nil {
		return err
	}
	loader, err := doc.Loader()
	if err != nil {
		return err
	}

	sink := charts.NewMemorySink()
	pipeline, err := charts.NewPipeline(charts.Options{
		Loader:    loader,
		Renderer:  charts.NewEChartsRenderer(sink),
		Config:    doc.ViewConfig(),
		Overrides: doc.Charts,
		Title:     doc.Title,
	})
	if err != nil {
		return err
	}
	if err := pipeline.Start(ctx); err != nil {
		return err
	}
	if cmd.Mode != "" {
		if err := pipeline.SetMode(ctx, charts.Mode(cmd.Mode)); err != nil {
			return err
		}
	}
	if cmd.Horizon >= 0 {
		if err := pipeline.SetHorizon(ctx, cmd.Horizon); err != nil {
			return err
		}
	}
	if err := pipeline.RevealAll(ctx); err != nil {
		return err
	}

	controller, err := charts.NewPageController(charts.PageControllerOptions{
		Pipeline: pipeline,
		Sink:     sink,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cmd.Out, 0o755); err != nil {
		return fmt.Errorf("chartsctl: mkdir %s: %w", cmd.Out, err)
	}
	pagePath := filepath.Join(cmd.Out, "index.html")
	page, err := os.Create(pagePath) //nolint:gosec
	if err != nil {
		return fmt.Errorf("chartsctl: create %s: %w", pagePath, err)
	}
	defer page.Close()
	if err := controller.RenderTemplate(ctx, page); err != nil {
		return err
	}

	fragments := charts.DirSink{Dir: filepath.Join(cmd.Out, "fragments")}
	for _, index := range pipeline.Rendered() {
		id := pipeline.ContainerID(index)
		if html, ok := sink.Fragment(id); ok {
			if err := fragments.Write(id, html); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(os.Stdout, "✓ rendered %d charts to %s\n", len(pipeline.Rendered()), cmd.Out)
	return nil
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	doc := charts.DefaultPageManifest()
	if cmd.Manifest != "" {
		loaded, err := charts.ReadPageManifest(cmd.Manifest)
		if err != nil {
			return err
		}
		doc = loaded
	}
	loader, err := doc.Loader()
	if err != nil {
		return err
	}

	sink := charts.NewMemorySink()
	hook := charts.NewBroadcastHook()
	pipeline, err := charts.NewPipeline(charts.Options{
		Loader:    loader,
		Renderer:  charts.NewEChartsRenderer(sink),
		Hook:      hook,
		Config:    doc.ViewConfig(),
		Overrides: doc.Charts,
		Title:     doc.Title,
	})
	if err != nil {
		return err
	}
	if err := pipeline.Start(ctx); err != nil {
		return err
	}
	if err := pipeline.RevealAll(ctx); err != nil {
		return err
	}

	controller, err := charts.NewPageController(charts.PageControllerOptions{
		Pipeline: pipeline,
		Sink:     sink,
	})
	if err != nil {
		return err
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Pipeline:   pipeline,
		Controller: controller,
		Sink:       sink,
		API:        httpapi.NewCommandExecutor(pipeline, nil),
		Broadcast:  hook,
		BasePath:   cmd.Base,
	}); err != nil {
		return err
	}

	log.Printf("chart page ready: http://localhost%s%s/page", cmd.Addr, cmd.Base)
	return server.Serve(cmd.Addr)
}
