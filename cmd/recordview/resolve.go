package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordview/pkg/field"
	"github.com/goliatone/go-recordview/pkg/remote"
)

const resolvePoll = 10 * time.Millisecond

type resolveOutput struct {
	Value      any           `json:"value"`
	Label      string        `json:"label,omitempty"`
	Resolved   remote.Item   `json:"resolved"`
	Query      string        `json:"query,omitempty"`
	Candidates []remote.Item `json:"candidates"`
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		apiURL, value, query, labelKey, valueKey string
		limit                                    int
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a remote-bound identifier and search its candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				return errors.New("--api is required")
			}
			if limit <= 0 {
				limit = a.cfg.SearchLimit
			}

			client := remote.NewClient(
				remote.WithHTTPClient(a.httpClient),
				remote.WithTimeout(a.cfg.RequestTimeout),
				remote.WithCacheSize(a.cfg.LookupCacheSize),
			)
			f := field.New(client,
				field.Binding{APIURL: apiURL, LabelKey: labelKey, ValueKey: valueKey},
				field.WithDebounce(a.cfg.Debounce),
				field.WithSearchLimit(limit),
			)
			defer f.Close()

			if value != "" {
				f.SetValue(value)
			}
			if query != "" {
				f.SetQuery(query)
			}

			state, err := settle(cmd, f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resolveOutput{
				Value:      state.Value,
				Label:      f.Label(state.Resolved),
				Resolved:   state.Resolved,
				Query:      state.Query,
				Candidates: state.Candidates,
			})
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "lookup endpoint")
	cmd.Flags().StringVar(&value, "value", "", "identifier to resolve")
	cmd.Flags().StringVar(&query, "query", "", "search text")
	cmd.Flags().StringVar(&labelKey, "label-key", "", "display key (default name)")
	cmd.Flags().StringVar(&valueKey, "value-key", "", "identifier key (default id)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum candidates (defaults to RECORDVIEW_SEARCH_LIMIT)")
	return cmd
}

// settle waits until no lookup or search is outstanding.
func settle(cmd *cobra.Command, f *field.Field) (field.State, error) {
	ticker := time.NewTicker(resolvePoll)
	defer ticker.Stop()
	for {
		state := f.State()
		if !state.Loading && !state.Pending {
			return state, nil
		}
		select {
		case <-cmd.Context().Done():
			return field.State{}, cmd.Context().Err()
		case <-ticker.C:
		}
	}
}
