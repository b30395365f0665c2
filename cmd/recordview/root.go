package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordview/internal/config"
	"github.com/goliatone/go-recordview/internal/logging"
	"github.com/goliatone/go-recordview/pkg/i18n"
	"github.com/goliatone/go-recordview/pkg/schema"
)

var log = logging.Logger("recordview-cli")

// deps are the collaborators tests replace.
type deps struct {
	prompter   Prompter
	httpClient *http.Client
	loadConfig func() (config.Config, error)
}

func defaultDeps() deps {
	return deps{
		prompter:   surveyPrompter{},
		httpClient: http.DefaultClient,
		loadConfig: config.Load,
	}
}

type app struct {
	deps
	cfg      config.Config
	logLevel string
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d}

	root := &cobra.Command{
		Use:          "recordview",
		Short:        "Schema driven record views",
		Long:         `Localize, diff, validate and persist records described by a JSON schema and a UI schema.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.SetProduction(cfg.LogJSON)
			level := cfg.LogLevel
			if a.logLevel != "" {
				level = a.logLevel
			}
			return logging.SetLevel(level)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLocalizeCmd(a),
		newDiffCmd(a),
		newValidateCmd(a),
		newSaveCmd(a),
		newResolveCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) loader() *schema.Loader {
	return schema.NewLoader(
		schema.WithHTTPClient(a.httpClient),
		schema.WithTimeout(a.cfg.RequestTimeout),
	)
}

// loadSchema reads a JSON schema, or converts a components.schemas entry
// when component is set.
func (a *app) loadSchema(ctx context.Context, location, component string) (*schema.Node, error) {
	if location == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	if component != "" {
		raw, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("read openapi document: %w", err)
		}
		return schema.FromOpenAPI(ctx, raw, component)
	}
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, err
	}
	return a.loader().LoadSchema(ctx, src)
}

func (a *app) loadUISchema(ctx context.Context, location string) (schema.UINode, error) {
	if location == "" {
		return nil, nil
	}
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, err
	}
	return a.loader().LoadUISchema(ctx, src)
}

func (a *app) loadRecord(ctx context.Context, location string) (map[string]any, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, err
	}
	return a.loader().LoadRecord(ctx, src)
}

// loadBundle reads <lang>.json|yaml files from dir. An empty dir yields an
// empty bundle so translation falls back to raw keys.
func (a *app) loadBundle(dir string) (*i18n.Bundle, error) {
	bundle, err := i18n.NewBundle(a.cfg.BaseLanguage)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return bundle, nil
	}
	if err := bundle.LoadFS(os.DirFS(dir)); err != nil {
		return nil, err
	}
	return bundle, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
