package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-adc-selector/internal/config"
	"github.com/goliatone/go-adc-selector/pkg/catalog"
)

const simulatedToken = "simulated-token"

type runtime struct {
	cfg    config.Config
	logger *log.Logger
	client *catalog.Client
}

func newRootCmd() *cobra.Command {
	var configFile string
	rt := &runtime{}

	root := &cobra.Command{
		Use:          "adc-selector",
		Short:        "Browse and select Application Design Center templates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New()
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = newLogger(cfg.LogLevel)
			rt.client, err = buildClient(cfg)
			return err
		},
	}
	root.SetErrPrefix("adc-selector:")

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./adc-selector.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("simulate", true, "use the embedded sample catalog instead of calling the catalog service")
	root.PersistentFlags().String("base-url", catalog.DefaultBaseURL, "catalog service base URL")
	root.PersistentFlags().Duration("delay", catalog.DefaultSimulatedDelay, "artificial latency of the sample catalog")
	root.PersistentFlags().String("token", "", "use this access token instead of application default credentials")
	root.PersistentFlags().Bool("require-selection", false, "reject an empty template selection")

	root.AddCommand(newServeCmd(rt))
	root.AddCommand(newPickCmd(rt))
	root.AddCommand(newListCmd(rt))

	return root
}

var flagKeys = map[string]string{
	"log-level":         config.KeyLogLevel,
	"simulate":          config.KeySimulate,
	"base-url":          config.KeyBaseURL,
	"delay":             config.KeyDelay,
	"require-selection": config.KeyRequireSelection,
	"listen":            config.KeyListen,
	"token":             config.KeyToken,
}

// bindFlags maps the dashed flag names onto config keys. Flags only override
// the file and environment when set explicitly.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "adc-selector",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func buildClient(cfg config.Config) (*catalog.Client, error) {
	var tokens catalog.TokenProvider = catalog.GoogleTokenProvider{}
	switch {
	case cfg.Token != "":
		tokens = catalog.StaticTokenProvider(cfg.Token)
	case cfg.Simulate:
		tokens = catalog.StaticTokenProvider(simulatedToken)
	}

	var fetcher catalog.Fetcher
	if cfg.Simulate {
		static, err := catalog.NewStaticFetcher(catalog.WithDelay(cfg.Delay))
		if err != nil {
			return nil, fmt.Errorf("sample catalog: %w", err)
		}
		fetcher = static
	} else {
		fetcher = catalog.NewHTTPFetcher(catalog.WithBaseURL(cfg.BaseURL))
	}

	return catalog.NewClient(tokens, fetcher, catalog.WithScope(cfg.Scope)), nil
}
