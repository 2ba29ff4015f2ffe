package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetCategoryInput activates a category; an empty key clears it.
type SetCategoryInput struct {
	Key string `json:"key"`
}

type categoryService interface {
	SetCategory(ctx context.Context, key string) error
}

// SetCategoryCommand wraps Pipeline.SetCategory.
type SetCategoryCommand struct {
	service   categoryService
	telemetry Telemetry
}

// NewSetCategoryCommand creates a command instance.
func NewSetCategoryCommand(service categoryService, telemetry Telemetry) *SetCategoryCommand {
	return &SetCategoryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetCategoryInput] = (*SetCategoryCommand)(nil)

// Execute delegates to the pipeline.
func (c *SetCategoryCommand) Execute(ctx context.Context, msg SetCategoryInput) error {
	if c.service == nil {
		return errors.New("category command requires pipeline")
	}
	if err := c.service.SetCategory(ctx, msg.Key); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.category", map[string]any{
		"key": msg.Key,
	})
	return nil
}
