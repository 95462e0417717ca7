package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/url-shortener-kv/internal/app"
	"github.com/vadimbarashkov/url-shortener-kv/internal/config"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
)

func newRootCmd() *cobra.Command {
	var configPath string

	loadConfig := func() (*config.Config, error) {
		if configPath == "" {
			configPath = os.Getenv("CONFIG_PATH")
		}
		return config.Load(configPath)
	}

	root := &cobra.Command{
		Use:          "url-shortener",
		Short:        "Serial short codes over a key-value store",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config (defaults to $CONFIG_PATH)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			return app.Run(cmd.Context(), cfg)
		},
	}

	shorten := &cobra.Command{
		Use:   "shorten <url>",
		Short: "Store a URL and print its short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			svc, err := app.NewService(cmd.Context(), cfg, app.NewLogger(cfg, cmd.ErrOrStderr()).Logger, nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.UseCase.ShortenURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s/u/%s\n", strings.TrimRight(cfg.RedirectBaseURL, "/"), m.Code)
			return nil
		},
	}

	resolve := &cobra.Command{
		Use:   "resolve <code>",
		Short: "Print the URL stored for a short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			svc, err := app.NewService(cmd.Context(), cfg, app.NewLogger(cfg, cmd.ErrOrStderr()).Logger, nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.UseCase.ResolveShortCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch res.Kind {
			case entity.ResolutionRedirect:
				fmt.Fprintln(cmd.OutOrStdout(), res.URL)
				return nil
			case entity.ResolutionNotFound:
				return fmt.Errorf("%s: %w", args[0], entity.ErrURLNotFound)
			default:
				return fmt.Errorf("%s: %s: %w", args[0], res.Reason, entity.ErrInvalidArguments)
			}
		},
	}

	root.AddCommand(serve, shorten, resolve)
	root.RunE = serve.RunE

	return root
}
