package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RevealAllInput queues every visible chart for rendering, bypassing
// appearance tracking. The payload is empty; the command is its own message.
type RevealAllInput struct{}

type revealService interface {
	RevealAll(ctx context.Context) error
}

// RevealAllCommand wraps Pipeline.RevealAll.
type RevealAllCommand struct {
	service   revealService
	telemetry Telemetry
}

// NewRevealAllCommand creates a command instance.
func NewRevealAllCommand(service revealService, telemetry Telemetry) *RevealAllCommand {
	return &RevealAllCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RevealAllInput] = (*RevealAllCommand)(nil)

// Execute delegates to the pipeline.
func (c *RevealAllCommand) Execute(ctx context.Context, _ RevealAllInput) error {
	if c.service == nil {
		return errors.New("reveal command requires pipeline")
	}
	if err := c.service.RevealAll(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.reveal_all", map[string]any{})
	return nil
}
