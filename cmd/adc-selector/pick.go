package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-adc-selector/components/adcselector"
	"github.com/goliatone/go-adc-selector/pkg/prompt"
	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

func newPickCmd(rt *runtime) *cobra.Command {
	var initial string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a template interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := pick(cmd.Context(), rt, prompt.NewSurveyDriver(cmd.ErrOrStderr()), initial)
			if errors.Is(err, prompt.ErrAborted) {
				rt.logger.Warn("selection aborted")
				return nil
			}
			if err != nil {
				return err
			}
			return writeSelection(cmd.OutOrStdout(), id)
		},
	}
	cmd.Flags().StringVar(&initial, "selected", "", "template id to preselect")
	return cmd
}

func pick(ctx context.Context, rt *runtime, driver prompt.Driver, initial string) (string, error) {
	component, err := adcselector.New(rt.client, secrets.NewMemoryStore(nil),
		adcselector.WithLogger(rt.logger),
		adcselector.WithRequireSelection(rt.cfg.RequireSelection),
	)
	if err != nil {
		return "", err
	}

	var chosen string
	field := component.NewField(adcselector.Props{
		Required: rt.cfg.RequireSelection,
		FormData: initial,
		OnChange: func(value string) { chosen = value },
	})
	if _, err := adcselector.Pick(ctx, field, driver); err != nil {
		return "", err
	}
	if errs := component.Validate(chosen); len(errs) > 0 {
		return "", errors.New(errs[0])
	}
	return chosen, nil
}

func writeSelection(w io.Writer, id string) error {
	_, err := fmt.Fprintln(w, id)
	return err
}
