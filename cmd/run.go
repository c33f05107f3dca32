package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icp-screener/internal/model"
)

var (
	runName    string
	runWebsite string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Research and score a single company",
	Long: "Runs the full pipeline for one company: Exa evidence gathering, research\n" +
		"synthesis, scoring against the six-factor rubric, and persistence. The\n" +
		"finished run is printed as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		domain := model.NormalizeDomain(runWebsite)
		if domain == "" {
			return eris.Errorf("cannot derive a domain from website %q", runWebsite)
		}

		env, err := initScreen(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company, err := env.Store.UpsertCompany(ctx, domain, runName, model.CanonicalURL(runWebsite))
		if err != nil {
			return err
		}

		if err := env.Runner.ProcessCompany(ctx, company); err != nil {
			return err
		}

		run, err := env.Store.LatestRun(ctx, company.ID)
		if err != nil {
			return err
		}
		return printJSON(run)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runName, "name", "", "company display name")
	runCmd.Flags().StringVar(&runWebsite, "website", "", "company website or domain")
	_ = runCmd.MarkFlagRequired("name")
	_ = runCmd.MarkFlagRequired("website")
}
