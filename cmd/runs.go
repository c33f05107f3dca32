package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/icp-screener/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect research runs",
}

var (
	runsDomain string
	runsLimit  int
)

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research runs as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.RunFilter{Limit: runsLimit}
		if runsDomain != "" {
			company, err := byDomain(ctx, st, runsDomain)
			if err != nil {
				return err
			}
			filter.CompanyID = company.ID
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return err
		}
		return printJSON(runs)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one research run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(run)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().StringVar(&runsDomain, "domain", "", "filter by company domain")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum rows")
}
