package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icp-screener/internal/model"
)

var trainingCmd = &cobra.Command{
	Use:   "training",
	Short: "Manage scoring calibration examples",
	Long: "Training examples are hand-scored factor judgments that get injected into\n" +
		"the scoring prompt. One example per (domain, factor); saving again replaces\n" +
		"the previous one.",
}

var (
	trainingDomain        string
	trainingFactor        string
	trainingCompany       string
	trainingScore         int
	trainingJustification string
	trainingResearchFile  string
)

var trainingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a training example",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		factor := trainingFactor
		if len(factor) != 1 || factor < "A" || factor > "F" {
			return eris.Errorf("factor must be A through F, got %q", trainingFactor)
		}

		var snapshot string
		if trainingResearchFile != "" {
			data, err := os.ReadFile(trainingResearchFile)
			if err != nil {
				return eris.Wrapf(err, "read %s", trainingResearchFile)
			}
			snapshot = string(data)
		}

		return st.UpsertTrainingExample(ctx, model.TrainingExample{
			Domain:           model.NormalizeDomain(trainingDomain),
			Factor:           factor,
			CompanyName:      trainingCompany,
			ResearchSnapshot: snapshot,
			Score:            trainingScore,
			Justification:    trainingJustification,
		})
	},
}

var trainingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List training examples as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		examples, err := st.ListTrainingExamples(ctx)
		if err != nil {
			return err
		}
		return printJSON(examples)
	},
}

var trainingDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a training example",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.DeleteTrainingExample(ctx, args[0])
	},
}

func init() {
	rootCmd.AddCommand(trainingCmd)
	trainingCmd.AddCommand(trainingAddCmd)
	trainingCmd.AddCommand(trainingListCmd)
	trainingCmd.AddCommand(trainingDeleteCmd)

	trainingAddCmd.Flags().StringVar(&trainingDomain, "domain", "", "company domain the example is keyed to")
	trainingAddCmd.Flags().StringVar(&trainingFactor, "factor", "", "rubric factor, A through F")
	trainingAddCmd.Flags().StringVar(&trainingCompany, "company", "", "company display name")
	trainingAddCmd.Flags().IntVar(&trainingScore, "score", 0, "hand-assigned factor score")
	trainingAddCmd.Flags().StringVar(&trainingJustification, "justification", "", "why the score is right")
	trainingAddCmd.Flags().StringVar(&trainingResearchFile, "research-file", "", "path to the research snapshot")
	_ = trainingAddCmd.MarkFlagRequired("domain")
	_ = trainingAddCmd.MarkFlagRequired("factor")
}
