package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/internal/server"
	"github.com/kmathys/orgcanvas/pkg/chart"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		chartFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

The server owns one chart and exposes it over HTTP: pointer events drive the
drag engine, the layout and render endpoints produce normalized positions and
SVG output, and the /charts endpoints save and load named charts in the
configured store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, chartFile)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&chartFile, "chart", "", "chart file to load at startup")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, chartFile string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ed, err := c.newEditor(cfg, nil)
	if err != nil {
		return err
	}
	if chartFile != "" {
		doc, err := chart.Import(chartFile)
		if err != nil {
			return fmt.Errorf("load chart %s: %w", chartFile, err)
		}
		if err := ed.Load(doc); err != nil {
			return fmt.Errorf("load chart %s: %w", chartFile, err)
		}
	}

	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(ed, st, c.Logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
