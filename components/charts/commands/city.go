package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetCityInput activates the city prefix filter; an empty key clears it.
type SetCityInput struct {
	Key string `json:"key"`
}

type cityService interface {
	SetCity(ctx context.Context, key string) error
}

// SetCityCommand wraps Pipeline.SetCity.
type SetCityCommand struct {
	service   cityService
	telemetry Telemetry
}

// NewSetCityCommand creates a command instance.
func NewSetCityCommand(service cityService, telemetry Telemetry) *SetCityCommand {
	return &SetCityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetCityInput] = (*SetCityCommand)(nil)

// Execute delegates to the pipeline.
func (c *SetCityCommand) Execute(ctx context.Context, msg SetCityInput) error {
	if c.service == nil {
		return errors.New("city command requires pipeline")
	}
	if err := c.service.SetCity(ctx, msg.Key); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.city", map[string]any{
		"key": msg.Key,
	})
	return nil
}
