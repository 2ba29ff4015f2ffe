package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetFilterInput activates a component filter; an empty key selects "all"
// within the active group.
type SetFilterInput struct {
	Key string `json:"key"`
}

// SetFilterGroupInput switches the active filter group.
type SetFilterGroupInput struct {
	Group string `json:"group"`
}

type filterService interface {
	SetFilter(ctx context.Context, key string) error
	SetFilterGroup(ctx context.Context, group string) error
}

// SetFilterCommand wraps Pipeline.SetFilter.
type SetFilterCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSetFilterCommand creates a command instance.
func NewSetFilterCommand(service filterService, telemetry Telemetry) *SetFilterCommand {
	return &SetFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetFilterInput] = (*SetFilterCommand)(nil)

// Execute delegates to the pipeline.
func (c *SetFilterCommand) Execute(ctx context.Context, msg SetFilterInput) error {
	if c.service == nil {
		return errors.New("filter command requires pipeline")
	}
	if err := c.service.SetFilter(ctx, msg.Key); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.filter", map[string]any{
		"key": msg.Key,
	})
	return nil
}

// SetFilterGroupCommand wraps Pipeline.SetFilterGroup.
type SetFilterGroupCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSetFilterGroupCommand creates a command instance.
func NewSetFilterGroupCommand(service filterService, telemetry Telemetry) *SetFilterGroupCommand {
	return &SetFilterGroupCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetFilterGroupInput] = (*SetFilterGroupCommand)(nil)

// Execute delegates to the pipeline.
func (c *SetFilterGroupCommand) Execute(ctx context.Context, msg SetFilterGroupInput) error {
	if c.service == nil {
		return errors.New("filter group command requires pipeline")
	}
	if err := c.service.SetFilterGroup(ctx, msg.Group); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "charts.command.filter_group", map[string]any{
		"group": msg.Group,
	})
	return nil
}
