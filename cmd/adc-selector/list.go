package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
)

func newListCmd(rt *runtime) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the template catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := fetchCatalog(cmd.Context(), rt.client)
			if err != nil {
				return err
			}
			rt.logger.Debug("catalog fetched", "templates", len(list.Templates))
			return writeCatalog(cmd.OutOrStdout(), list, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format (yaml, json)")
	return cmd
}

func fetchCatalog(ctx context.Context, client *catalog.Client) (catalog.TemplateList, error) {
	token, err := client.GetAccessToken(ctx)
	if err != nil {
		return catalog.TemplateList{}, fmt.Errorf("access token: %w", err)
	}
	list, err := client.GetTemplates(ctx, token)
	if err != nil {
		return catalog.TemplateList{}, fmt.Errorf("list templates: %w", err)
	}
	return list, nil
}

func writeCatalog(w io.Writer, list catalog.TemplateList, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
