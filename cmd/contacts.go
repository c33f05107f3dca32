package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/discovery"
	"github.com/sells-group/icp-screener/internal/store"
	"github.com/sells-group/icp-screener/pkg/crustdata"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Search, store, and enrich people at prospect companies",
}

var (
	contactsDomains      []string
	contactsTitles       []string
	contactsFunctions    []string
	contactsVerifiedOnly bool
	contactsChangedJobs  bool
	contactsLimit        int
	contactsCursor       string
	contactsAdd          bool
)

var contactsFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Search the person database for contacts at given domains",
	Long: "Searches the Crustdata person database scoped to one or more company\n" +
		"domains. With --add the results are stored and their business emails\n" +
		"enriched in one pass.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "contacts")
		if err != nil {
			return err
		}
		defer st.Close()

		finder := discovery.NewContactFinder(newCrustdata(), st)

		page, err := finder.Search(ctx, discovery.PeopleQuery{
			Domains:             contactsDomains,
			Titles:              contactsTitles,
			Functions:           contactsFunctions,
			VerifiedEmailOnly:   contactsVerifiedOnly,
			RecentlyChangedJobs: contactsChangedJobs,
		}, contactsLimit, contactsCursor)
		if err != nil {
			return err
		}

		if contactsAdd {
			added, outcome, err := finder.AddAndEnrich(ctx, page.Contacts)
			if err != nil {
				return err
			}
			zap.L().Info("contacts stored",
				zap.Int64("added", added),
				zap.Int("enriched", outcome.Enriched),
				zap.Int("queued", outcome.Queued),
				zap.Int("no_email", outcome.NoEmail),
				zap.Int("failed", outcome.Failed),
			)
			return printJSON(outcome)
		}
		return printJSON(page)
	},
}

var enrichDomain string

var contactsEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich business emails for stored contacts missing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "contacts")
		if err != nil {
			return err
		}
		defer st.Close()

		contacts, err := st.ListContacts(ctx, store.ContactFilter{Domain: enrichDomain})
		if err != nil {
			return err
		}

		finder := discovery.NewContactFinder(newCrustdata(), st)

		var outcome discovery.EnrichOutcome
		for _, c := range contacts {
			if c.BusinessEmail != "" {
				continue
			}
			email, err := finder.EnrichContact(ctx, c)
			switch {
			case eris.Is(err, crustdata.ErrProfileQueued):
				outcome.Queued++
			case err != nil:
				outcome.Failed++
				zap.L().Warn("enrich failed", zap.String("contact", c.Name), zap.Error(err))
			case email == "":
				outcome.NoEmail++
			default:
				outcome.Enriched++
			}
		}
		return printJSON(outcome)
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)
	contactsCmd.AddCommand(contactsFindCmd)
	contactsCmd.AddCommand(contactsEnrichCmd)

	contactsFindCmd.Flags().StringSliceVar(&contactsDomains, "domains", nil, "company domains to search")
	contactsFindCmd.Flags().StringSliceVar(&contactsTitles, "titles", nil, "fuzzy title matches")
	contactsFindCmd.Flags().StringSliceVar(&contactsFunctions, "functions", nil, "function categories")
	contactsFindCmd.Flags().BoolVar(&contactsVerifiedOnly, "verified-only", false, "only verified business emails")
	contactsFindCmd.Flags().BoolVar(&contactsChangedJobs, "changed-jobs", false, "only recently changed jobs")
	contactsFindCmd.Flags().IntVar(&contactsLimit, "limit", 25, "results per page")
	contactsFindCmd.Flags().StringVar(&contactsCursor, "cursor", "", "pagination cursor")
	contactsFindCmd.Flags().BoolVar(&contactsAdd, "add", false, "store results and enrich emails")
	_ = contactsFindCmd.MarkFlagRequired("domains")

	contactsEnrichCmd.Flags().StringVar(&enrichDomain, "domain", "", "restrict to one company domain")
}
