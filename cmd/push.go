package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/discovery"
	"github.com/sells-group/icp-screener/pkg/instantly"
)

var (
	pushCampaign          string
	pushInstantlyCampaign string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push a campaign's emailable contacts to Instantly",
	Long: "Builds Instantly leads from a local campaign's contacts (first/last name\n" +
		"split, company name, personalized email_N merge variables from the\n" +
		"campaign's message sequence) and uploads them in batches.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "push")
		if err != nil {
			return err
		}
		defer st.Close()

		pusher := discovery.NewPusher(newInstantly(), st)

		result, err := pusher.Push(ctx, pushCampaign, pushInstantlyCampaign)
		if err != nil {
			return err
		}
		zap.L().Info("campaign pushed",
			zap.String("campaign_id", pushCampaign),
			zap.Int("leads", result.Leads),
		)
		return printJSON(result)
	},
}

var pushListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active Instantly campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("push"); err != nil {
			return err
		}
		campaigns, err := newInstantly().ListCampaigns(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(campaigns)
	},
}

func newInstantly() instantly.Client {
	return instantly.NewClient(cfg.Instantly.Key, instantly.WithBaseURL(cfg.Instantly.BaseURL))
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.AddCommand(pushListCmd)

	pushCmd.Flags().StringVar(&pushCampaign, "campaign", "", "local campaign id")
	pushCmd.Flags().StringVar(&pushInstantlyCampaign, "instantly-campaign", "", "Instantly campaign id")
	_ = pushCmd.MarkFlagRequired("campaign")
	_ = pushCmd.MarkFlagRequired("instantly-campaign")
}
