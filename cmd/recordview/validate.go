package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/goliatone/go-recordview/pkg/schema"
	"github.com/goliatone/go-recordview/pkg/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	var schemaPath, component string
	cmd := &cobra.Command{
		Use:   "validate RECORD",
		Short: "Validate a record and print renderer-shaped errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			node, err := a.loadSchema(ctx, schemaPath, component)
			if err != nil {
				return err
			}
			doc, err := a.loadRecord(ctx, args[0])
			if err != nil {
				return err
			}
			errs, err := a.validate(node, doc)
			if err != nil {
				return err
			}
			if errs == nil {
				errs = []schema.ValidationError{}
			}
			if err := writeJSON(cmd.OutOrStdout(), errs); err != nil {
				return err
			}
			if len(errs) > 0 {
				return fmt.Errorf("record has %d validation error(s)", len(errs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file or URL (JSON or YAML)")
	cmd.Flags().StringVar(&component, "openapi-component", "", "treat --schema as an OpenAPI document and use this component")
	return cmd
}

func (a *app) validate(node *schema.Node, doc map[string]any) ([]schema.ValidationError, error) {
	tag, err := language.Parse(a.cfg.Language)
	if err != nil {
		tag = language.English
	}
	v, err := validate.New(node, validate.WithLanguage(tag))
	if err != nil {
		return nil, err
	}
	return v.Validate(doc)
}
