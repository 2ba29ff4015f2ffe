package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

// SetModeInput selects the display mode for the page.
type SetModeInput struct {
	Mode charts.Mode `json:"mode"`
}

type modeService interface {
	SetMode(ctx context.Context, mode charts.Mode) error
}

// SetModeCommand wraps Pipeline.SetMode so transports can switch modes
// without linking directly against the pipeline.
type SetModeCommand struct {
	service   modeService
	telemetry Telemetry
}

// NewSetModeCommand creates a command instance.
func NewSetModeCommand(service modeService, telemetry Telemetry) *SetModeCommand {
	return &SetModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetModeInput] = (*SetModeCommand)(nil)

// Execute delegates to the pipeline.
func (c *SetModeCommand) Execute(ctx context.Context, msg SetModeInput) error {
	if c.service == nil {
		return errors.New("mode command requires pipeline")
	}
	if err := c.service.SetMode(ctx, msg.Mode); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.mode", map[string]any{
		"mode": string(msg.Mode),
	})
	return nil
}
