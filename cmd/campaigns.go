package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Manage local outreach campaigns",
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		campaign, err := st.CreateCampaign(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(campaign)
	},
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		campaigns, err := st.ListCampaigns(ctx)
		if err != nil {
			return err
		}
		return printJSON(campaigns)
	},
}

var (
	addContactsCampaign string
	addContactsDomain   string
)

var campaignsAddContactsCmd = &cobra.Command{
	Use:   "add-contacts",
	Short: "Add stored contacts with emails to a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		contacts, err := st.ListContacts(ctx, store.ContactFilter{
			Domain:   addContactsDomain,
			HasEmail: true,
		})
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			return eris.New("no contacts with business emails matched")
		}

		ids := make([]string, 0, len(contacts))
		for _, c := range contacts {
			ids = append(ids, c.ID)
		}
		if err := st.AddContactsToCampaign(ctx, addContactsCampaign, ids); err != nil {
			return err
		}
		zap.L().Info("contacts added to campaign",
			zap.String("campaign_id", addContactsCampaign),
			zap.Int("contacts", len(ids)),
		)
		return nil
	},
}

var (
	addMessageCampaign string
	addMessageChannel  string
	addMessageStep     int
	addMessageSubject  string
	addMessageBodyFile string
)

var campaignsAddMessageCmd = &cobra.Command{
	Use:   "add-message",
	Short: "Add a sequence message to a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		body, err := os.ReadFile(addMessageBodyFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", addMessageBodyFile)
		}

		msg, err := st.SaveCampaignMessage(ctx, model.CampaignMessage{
			CampaignID: addMessageCampaign,
			Channel:    addMessageChannel,
			StepNumber: addMessageStep,
			Subject:    addMessageSubject,
			Body:       string(body),
		})
		if err != nil {
			return err
		}
		return printJSON(msg)
	},
}

func init() {
	rootCmd.AddCommand(campaignsCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsAddContactsCmd)
	campaignsCmd.AddCommand(campaignsAddMessageCmd)

	campaignsAddContactsCmd.Flags().StringVar(&addContactsCampaign, "campaign", "", "campaign id")
	campaignsAddContactsCmd.Flags().StringVar(&addContactsDomain, "domain", "", "restrict to one company domain")
	_ = campaignsAddContactsCmd.MarkFlagRequired("campaign")

	campaignsAddMessageCmd.Flags().StringVar(&addMessageCampaign, "campaign", "", "campaign id")
	campaignsAddMessageCmd.Flags().StringVar(&addMessageChannel, "channel", "email", "message channel: email or linkedin")
	campaignsAddMessageCmd.Flags().IntVar(&addMessageStep, "step", 1, "sequence step number")
	campaignsAddMessageCmd.Flags().StringVar(&addMessageSubject, "subject", "", "email subject")
	campaignsAddMessageCmd.Flags().StringVar(&addMessageBodyFile, "body-file", "", "path to the message body")
	_ = campaignsAddMessageCmd.MarkFlagRequired("campaign")
	_ = campaignsAddMessageCmd.MarkFlagRequired("body-file")
}
