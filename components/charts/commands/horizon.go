package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetHorizonInput sets the trailing display window in months; zero shows the
// full history.
type SetHorizonInput struct {
	Months int `json:"months"`
}

type horizonService interface {
	SetHorizon(ctx context.Context, months int) error
}

// SetHorizonCommand wraps Pipeline.SetHorizon.
type SetHorizonCommand struct {
	service   horizonService
	telemetry Telemetry
}

// NewSetHorizonCommand creates a command instance.
func NewSetHorizonCommand(service horizonService, telemetry Telemetry) *SetHorizonCommand {
	return &SetHorizonCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetHorizonInput] = (*SetHorizonCommand)(nil)

// Execute delegates to the pipeline.
func (c *SetHorizonCommand) Execute(ctx context.Context, msg SetHorizonInput) error {
	if c.service == nil {
		return errors.New("horizon command requires pipeline")
	}
	if err := c.service.SetHorizon(ctx, msg.Months); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.horizon", map[string]any{
		"months": msg.Months,
	})
	return nil
}
