package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordview/components/lookup"
	"github.com/goliatone/go-recordview/components/records"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr, itemsPath, labelKey, valueKey string
		required                            []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a lookup endpoint and an in-memory record collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			items, err := readItems(itemsPath)
			if err != nil {
				return err
			}
			router, err := newServeRouter(items, labelKey, valueKey, required)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to RECORDVIEW_LISTEN_ADDR)")
	cmd.Flags().StringVar(&itemsPath, "items", "", "JSON array of lookup items")
	cmd.Flags().StringVar(&labelKey, "label-key", "", "lookup display key (default name)")
	cmd.Flags().StringVar(&valueKey, "value-key", "", "lookup identifier key (default id)")
	cmd.Flags().StringSliceVar(&required, "required", nil, "fields the record collection requires")
	return cmd
}

func newServeRouter(items []lookup.Item, labelKey, valueKey string, required []string) (http.Handler, error) {
	router := chi.NewRouter()

	lookupPath, err := lookup.RegisterRoutes(router, "",
		lookup.WithItems(items),
		lookup.WithLabelKey(labelKey),
		lookup.WithValueKey(valueKey),
	)
	if err != nil {
		return nil, err
	}
	recordsPath, err := records.RegisterRoutes(router, "", records.WithRequired(required...))
	if err != nil {
		return nil, err
	}
	log.Infow("routes mounted", "lookup", lookupPath, "records", recordsPath)
	return router, nil
}

func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func readItems(path string) ([]lookup.Item, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var items []lookup.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items %s: %w", path, err)
	}
	return items, nil
}
