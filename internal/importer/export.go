package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
)

// exportHeader is the screening-results column set consumers of the old
// spreadsheet exports expect.
var exportHeader = []string{
	"Company Name", "Website", "Total Score", "ICP Fit",
	"A: Differentiation", "A: Verdict",
	"B: Outcomes", "B: Verdict",
	"C: Customer-Centric", "C: Verdict",
	"D: Product Change", "D: Verdict",
	"E: Audience Change", "E: Verdict",
	"F: Multi-Product", "F: Verdict",
	"Score Summary", "Disqualified Reason",
	"Manual Score", "Status",
}

// ExportCSV writes every company and its latest run's scores as CSV.
// Companies without a run export with zero scores.
func ExportCSV(ctx context.Context, s store.Store, w io.Writer) error {
	rows, err := store.CompaniesWithLatestRun(ctx, s, store.CompanyFilter{})
	if err != nil {
		return eris.Wrap(err, "importer: load companies")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return eris.Wrap(err, "importer: write header")
	}
	for _, row := range rows {
		if err := cw.Write(exportRecord(row)); err != nil {
			return eris.Wrapf(err, "importer: write %s", row.Company.Domain)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "importer: flush")
}

func exportRecord(row store.CompanyWithRun) []string {
	c := row.Company
	var run model.ResearchRun
	if row.Run != nil {
		run = *row.Run
	}
	sc := run.Score
	return []string{
		c.Name, c.Website,
		strconv.Itoa(run.TotalScore), run.ICPFit,
		strconv.Itoa(sc.ScoreA), sc.AVerdict,
		strconv.Itoa(sc.ScoreB), sc.BVerdict,
		strconv.Itoa(sc.ScoreC), sc.CVerdict,
		strconv.Itoa(sc.ScoreD), sc.DVerdict,
		strconv.Itoa(sc.ScoreE), sc.EVerdict,
		strconv.Itoa(sc.ScoreF), sc.FVerdict,
		run.ScoreSummary, run.DisqualificationReason,
		c.ManualScore, string(c.Status),
	}
}
