package adcselector

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-adc-selector/pkg/prompt"
)

// ErrNoTemplates is returned by Pick when the catalog is empty.
var ErrNoTemplates = errors.New("adcselector: catalog has no templates")

// Pick loads field (unless it is already ready) and asks driver to choose a
// template. The choice is reported through Select and returned.
func Pick(ctx context.Context, field *Field, driver prompt.Driver) (string, error) {
	if field == nil || driver == nil {
		return "", errors.New("adcselector: pick requires a field and a driver")
	}
	if field.State() != StateReady {
		if err := driver.Info(ctx, "Loading Application Design Center templates..."); err != nil {
			return "", err
		}
		if err := field.Load(ctx); err != nil {
			return "", fmt.Errorf("adcselector: load templates: %w", err)
		}
	}

	view := field.View()
	if len(view.Cards) == 0 {
		return "", ErrNoTemplates
	}

	cfg := prompt.SelectConfig{
		Message:      "Select a template",
		Options:      make([]string, 0, len(view.Cards)),
		Descriptions: make([]string, 0, len(view.Cards)),
		DefaultIndex: -1,
		PageSize:     field.opts.PlaceholderCount,
	}
	for i, card := range view.Cards {
		cfg.Options = append(cfg.Options, card.Name)
		cfg.Descriptions = append(cfg.Descriptions, card.Description)
		if card.Selected {
			cfg.DefaultIndex = i
		}
	}

	index, err := driver.Select(ctx, cfg)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(view.Cards) {
		return "", fmt.Errorf("adcselector: invalid selection index %d", index)
	}
	id := view.Cards[index].ID
	field.Select(id)
	return id, nil
}
