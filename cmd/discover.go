package main

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/discovery"
	"github.com/sells-group/icp-screener/internal/store"
	"github.com/sells-group/icp-screener/pkg/crustdata"
)

var (
	discoverMode    string
	discoverFilters string
	discoverPreset  string
	discoverLimit   int
	discoverCursor  string
	discoverPage    int
	discoverAdd     bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find prospect companies in the company database",
	Long: "Searches the Crustdata company database (or its LinkedIn screener) with a\n" +
		"JSON filter list, excluding domains already in the queue. With --add the\n" +
		"results are queued for screening.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "discover")
		if err != nil {
			return err
		}
		defer st.Close()

		mode, raw, err := resolveFilters(ctx, st)
		if err != nil {
			return err
		}

		d := discovery.NewDiscoverer(newCrustdata(), st)

		var page *discovery.Page
		switch mode {
		case "indb":
			inputs, err := discovery.ParseFilterInputs(raw)
			if err != nil {
				return err
			}
			page, err = d.SearchInDB(ctx, inputs, discoverLimit, discoverCursor)
			if err != nil {
				return err
			}
		case "linkedin":
			var filters []crustdata.ScreenFilter
			if err := json.Unmarshal([]byte(raw), &filters); err != nil {
				return eris.Wrap(err, "parse screen filters")
			}
			page, err = d.SearchLinkedIn(ctx, filters, discoverPage, discoverLimit)
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("unknown discovery mode %q (want indb or linkedin)", mode)
		}

		if discoverAdd {
			added, err := d.AddToQueue(ctx, page.Prospects)
			if err != nil {
				return err
			}
			zap.L().Info("prospects queued",
				zap.Int("found", len(page.Prospects)),
				zap.Int("added", added),
			)
		}
		return printJSON(page)
	},
}

// resolveFilters returns the mode and raw filter JSON, preferring a saved
// preset when one is named.
func resolveFilters(ctx context.Context, st store.Store) (string, string, error) {
	if discoverPreset == "" {
		return discoverMode, discoverFilters, nil
	}

	presets, err := st.ListSavedFilters(ctx)
	if err != nil {
		return "", "", err
	}
	for _, p := range presets {
		if p.Name == discoverPreset {
			return p.Mode, p.Filters, nil
		}
	}
	return "", "", eris.Errorf("no saved filter named %q", discoverPreset)
}

var (
	saveFilterName string
	saveFilterMode string
	saveFilterJSON string
)

var saveFilterCmd = &cobra.Command{
	Use:   "save-filter",
	Short: "Save a discovery filter preset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if !json.Valid([]byte(saveFilterJSON)) {
			return eris.New("filters must be valid JSON")
		}
		saved, err := st.SaveFilter(ctx, saveFilterName, saveFilterMode, saveFilterJSON)
		if err != nil {
			return err
		}
		return printJSON(saved)
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List saved filter presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		presets, err := st.ListSavedFilters(ctx)
		if err != nil {
			return err
		}
		return printJSON(presets)
	},
}

var deletePresetCmd = &cobra.Command{
	Use:   "delete-preset <id>",
	Short: "Delete a saved filter preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.DeleteSavedFilter(ctx, args[0])
	},
}

func newCrustdata() crustdata.Client {
	return crustdata.NewClient(cfg.Crustdata.Key,
		crustdata.WithBaseURL(cfg.Crustdata.BaseURL),
		crustdata.WithEnrichRate(cfg.Crustdata.EnrichRPS),
	)
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.AddCommand(saveFilterCmd)
	discoverCmd.AddCommand(presetsCmd)
	discoverCmd.AddCommand(deletePresetCmd)

	discoverCmd.Flags().StringVar(&discoverMode, "mode", "indb", "search mode: indb or linkedin")
	discoverCmd.Flags().StringVar(&discoverFilters, "filters", "[]", "JSON filter list")
	discoverCmd.Flags().StringVar(&discoverPreset, "preset", "", "use a saved filter preset by name")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 25, "results per page")
	discoverCmd.Flags().StringVar(&discoverCursor, "cursor", "", "pagination cursor (indb mode)")
	discoverCmd.Flags().IntVar(&discoverPage, "page", 1, "page number (linkedin mode)")
	discoverCmd.Flags().BoolVar(&discoverAdd, "add", false, "queue results for screening")

	saveFilterCmd.Flags().StringVar(&saveFilterName, "name", "", "preset name")
	saveFilterCmd.Flags().StringVar(&saveFilterMode, "mode", "indb", "search mode the preset applies to")
	saveFilterCmd.Flags().StringVar(&saveFilterJSON, "filters", "", "JSON filter list")
	_ = saveFilterCmd.MarkFlagRequired("name")
	_ = saveFilterCmd.MarkFlagRequired("filters")
}
