package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bnema/daily-fortune/internal/application"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAlmanacCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "almanac",
		Aliases: []string{"fortune", "huangli"},
		Short:   "Fetch and display today's almanac",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireCommandApp(cmd, opts)
			if err != nil {
				return err
			}

			var result application.AlmanacResult
			err = fetchWithProgress(cmd, asJSON, "Fetching almanac...", func(ctx context.Context) error {
				var fetchErr error
				result, fetchErr = app.service.Almanac(ctx)
				return fetchErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result.Record)
			}
			rendered, err := app.almanacRenderer(result)
			if err != nil {
				return fmt.Errorf("render almanac: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newConstellationCmd(opts *rootOptions) *cobra.Command {
	var sign string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "constellation",
		Aliases: []string{"star", "horoscope"},
		Short:   "Fetch and display today's horoscope for a sign",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireCommandApp(cmd, opts)
			if err != nil {
				return err
			}

			var result application.ConstellationResult
			err = fetchWithProgress(cmd, asJSON, "Fetching horoscope...", func(ctx context.Context) error {
				var fetchErr error
				result, fetchErr = app.service.Constellation(ctx, sign)
				return fetchErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result.Record)
			}
			rendered, err := app.constellationRenderer(result)
			if err != nil {
				return fmt.Errorf("render constellation: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&sign, "sign", "", "Sign, romanized (leo) or Chinese (狮子座); default aries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func wireCommandApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return wireApp(cfg, cmd.ErrOrStderr())
}

// fetchWithProgress shows a spinner only for human output on a terminal.
func fetchWithProgress(cmd *cobra.Command, asJSON bool, label string, fetch func(context.Context) error) error {
	if asJSON || !isTerminal(cmd.ErrOrStderr()) {
		return fetch(cmd.Context())
	}
	return runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, fetch)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
