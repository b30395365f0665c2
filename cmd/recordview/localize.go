package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordview/pkg/localize"
	"github.com/goliatone/go-recordview/pkg/schema"
)

type localizeOutput struct {
	Schema   *schema.Node  `json:"schema"`
	UISchema schema.UINode `json:"uischema,omitempty"`
}

func newLocalizeCmd(a *app) *cobra.Command {
	var (
		schemaPath, uiPath, component, bundleDir, lang string
		check                                          bool
	)
	cmd := &cobra.Command{
		Use:   "localize",
		Short: "Print the schema and UI schema translated into a language",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			node, err := a.loadSchema(ctx, schemaPath, component)
			if err != nil {
				return err
			}
			ui, err := a.loadUISchema(ctx, uiPath)
			if err != nil {
				return err
			}
			if check && ui != nil {
				if err := schema.CheckScopes(ui, node); err != nil {
					return err
				}
			}
			bundle, err := a.loadBundle(bundleDir)
			if err != nil {
				return err
			}
			if lang == "" {
				lang = a.cfg.Language
			}

			t := bundle.Func(lang)
			return writeJSON(cmd.OutOrStdout(), localizeOutput{
				Schema:   localize.TranslateSchema(node, t),
				UISchema: localize.TranslateUISchema(ui, t),
			})
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file or URL (JSON or YAML)")
	cmd.Flags().StringVar(&component, "openapi-component", "", "treat --schema as an OpenAPI document and use this component")
	cmd.Flags().StringVar(&uiPath, "uischema", "", "UI schema file or URL")
	cmd.Flags().StringVar(&bundleDir, "bundle-dir", "", "directory with <lang>.json|yaml message files")
	cmd.Flags().StringVar(&lang, "lang", "", "language tag (defaults to RECORDVIEW_LANGUAGE)")
	cmd.Flags().BoolVar(&check, "check-scopes", false, "fail when a control scope does not resolve")
	return cmd
}
