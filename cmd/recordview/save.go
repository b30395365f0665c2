package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordview/pkg/persist"
	"github.com/goliatone/go-recordview/pkg/record"
)

type saveOutput struct {
	Outcome  string          `json:"outcome"`
	Fields   []string        `json:"fields,omitempty"`
	Messages []string        `json:"messages,omitempty"`
	Payload  record.Document `json:"payload,omitempty"`
	Record   record.Document `json:"record,omitempty"`
}

func newSaveCmd(a *app) *cobra.Command {
	var (
		schemaPath, component, recordPath, editedPath string
		apiURL, bundleDir, lang                       string
		yes                                           bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Run the save pipeline for an edited record against a REST collection",
		Long: `Loads the stored record (or starts a new one), applies the edited document,
validates it and persists the change set. Undeclared fields need confirmation
before they are removed; pass --yes to confirm without prompting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if editedPath == "" {
				return errors.New("--edited is required")
			}
			if apiURL == "" {
				apiURL = a.cfg.APIURL
			}
			if lang == "" {
				lang = a.cfg.Language
			}

			node, err := a.loadSchema(ctx, schemaPath, component)
			if err != nil {
				return err
			}
			base := record.Document{}
			if recordPath != "" {
				if base, err = a.loadRecord(ctx, recordPath); err != nil {
					return err
				}
			}
			edited, err := a.loadRecord(ctx, editedPath)
			if err != nil {
				return err
			}
			bundle, err := a.loadBundle(bundleDir)
			if err != nil {
				return err
			}
			persister, err := persist.NewHTTP(apiURL,
				persist.WithHTTPClient(a.httpClient),
				persist.WithTimeout(a.cfg.RequestTimeout),
			)
			if err != nil {
				return err
			}

			ctrl := record.New(base,
				record.WithSchema(node),
				record.WithPersister(persister),
				record.WithBundle(bundle),
				record.WithLanguage(lang),
			)
			if !ctrl.IsNew() {
				if err := ctrl.Edit(); err != nil {
					return err
				}
			}

			errs, err := a.validate(node, edited)
			if err != nil {
				return err
			}
			ctrl.Change(edited, errs)

			outcome, err := ctrl.Save(ctx, record.SaveOptions{})
			if err != nil {
				return err
			}
			if outcome.Kind == record.OutcomeNeedsConfirmation {
				confirmed := yes
				if !confirmed {
					confirmed, err = a.prompter.Confirm(ctx, outcome.Message(),
						"Fields: "+strings.Join(outcome.Fields, ", "), false)
					if err != nil {
						return err
					}
				}
				if confirmed {
					if outcome, err = ctrl.Save(ctx, record.SaveOptions{ConfirmRemoval: true}); err != nil {
						return err
					}
				}
			}

			if err := writeJSON(cmd.OutOrStdout(), saveOutput{
				Outcome:  outcome.Kind.String(),
				Fields:   outcome.Fields,
				Messages: outcome.Messages,
				Payload:  outcome.Payload,
				Record:   outcome.Record,
			}); err != nil {
				return err
			}
			if !outcome.Ok() {
				return fmt.Errorf("record not saved: %s", outcome.Kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file or URL (JSON or YAML)")
	cmd.Flags().StringVar(&component, "openapi-component", "", "treat --schema as an OpenAPI document and use this component")
	cmd.Flags().StringVar(&recordPath, "record", "", "stored record; omit to create a new one")
	cmd.Flags().StringVar(&editedPath, "edited", "", "edited record document")
	cmd.Flags().StringVar(&apiURL, "api", "", "collection URL (defaults to RECORDVIEW_API_URL)")
	cmd.Flags().StringVar(&bundleDir, "bundle-dir", "", "directory with <lang>.json|yaml message files")
	cmd.Flags().StringVar(&lang, "lang", "", "language for messages (defaults to RECORDVIEW_LANGUAGE)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm removal of undeclared fields")
	return cmd
}
