package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Inspect and manage the company queue",
}

var (
	companiesStatus string
	companiesLimit  int
	companiesRuns   bool
)

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.CompanyFilter{Limit: companiesLimit}
		if companiesStatus != "" {
			filter.Statuses = []model.CompanyStatus{model.CompanyStatus(companiesStatus)}
		}

		if companiesRuns {
			rows, err := store.CompaniesWithLatestRun(ctx, st, filter)
			if err != nil {
				return err
			}
			return printJSON(rows)
		}

		companies, err := st.ListCompanies(ctx, filter)
		if err != nil {
			return err
		}
		return printJSON(companies)
	},
}

// byDomain resolves a company or fails with a usable message.
func byDomain(ctx context.Context, st store.Store, domain string) (*model.Company, error) {
	company, err := st.GetCompanyByDomain(ctx, model.NormalizeDomain(domain))
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, eris.Errorf("no company with domain %q", domain)
	}
	return company, nil
}

var setScoreValue string

var companiesSetScoreCmd = &cobra.Command{
	Use:   "set-score <domain>",
	Short: "Set a manual score on a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		company, err := byDomain(ctx, st, args[0])
		if err != nil {
			return err
		}
		return st.SetManualScore(ctx, company.ID, setScoreValue)
	},
}

var setStatusValue string

var companiesSetStatusCmd = &cobra.Command{
	Use:   "set-status <domain>",
	Short: "Set the account status on a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		company, err := byDomain(ctx, st, args[0])
		if err != nil {
			return err
		}
		return st.SetAccountStatus(ctx, company.ID, setStatusValue)
	},
}

var companiesDeleteCmd = &cobra.Command{
	Use:   "delete <domain>",
	Short: "Delete a company and its runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		company, err := byDomain(ctx, st, args[0])
		if err != nil {
			return err
		}
		return st.DeleteCompany(ctx, company.ID)
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.AddCommand(companiesListCmd)
	companiesCmd.AddCommand(companiesSetScoreCmd)
	companiesCmd.AddCommand(companiesSetStatusCmd)
	companiesCmd.AddCommand(companiesDeleteCmd)

	companiesListCmd.Flags().StringVar(&companiesStatus, "status", "", "filter by status (pending, processing, complete, error)")
	companiesListCmd.Flags().IntVar(&companiesLimit, "limit", 0, "maximum rows (0 = all)")
	companiesListCmd.Flags().BoolVar(&companiesRuns, "runs", false, "include each company's latest run")

	companiesSetScoreCmd.Flags().StringVar(&setScoreValue, "score", "", "manual score value (empty clears)")
	companiesSetStatusCmd.Flags().StringVar(&setStatusValue, "account-status", "", "account status value (empty clears)")
}
