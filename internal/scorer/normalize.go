package scorer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/icp-screener/internal/model"
)

// Flatten decomposes a nested scoring result into the flat column set the
// run table stores. Homepage section names come from factor A and are shared
// across factors A, B, and C; only the first four sections of each factor
// are kept. List-valued fields are serialized with fixed delimiters ("; ",
// ", ", " — "); free text containing a delimiter will not round-trip exactly
// through Rehydrate.
func Flatten(sr model.ScoringResult) model.ScoreColumns {
	var cols model.ScoreColumns

	aSections := pad4(sr.FactorA.HomepageSections)
	bSections := pad4(sr.FactorB.HomepageSections)

	cols.HomepageSection1Name = aSections[0].Name
	cols.HomepageSection2Name = aSections[1].Name
	cols.HomepageSection3Name = aSections[2].Name
	cols.HomepageSection4Name = aSections[3].Name

	cols.ScoreA = sr.FactorA.Score
	cols.ADifferentiators = strings.Join(sr.FactorA.Differentiators, "; ")
	cols.ASection1Finding, cols.ASection1Status = aSections[0].Finding, aSections[0].Status
	cols.ASection2Finding, cols.ASection2Status = aSections[1].Finding, aSections[1].Status
	cols.ASection3Finding, cols.ASection3Status = aSections[2].Finding, aSections[2].Status
	cols.ASection4Finding, cols.ASection4Status = aSections[3].Finding, aSections[3].Status
	cols.AVerdict = sr.FactorA.Verdict

	cols.ScoreB = sr.FactorB.Score
	cols.BDecisionMaker = sr.FactorB.DecisionMaker
	cols.BStrategicOutcomes = strings.Join(sr.FactorB.StrategicOutcomes, "; ")
	cols.BTacticalOutcomes = strings.Join(sr.FactorB.TacticalOutcomes, "; ")
	cols.BSection1Finding, cols.BSection1Type = bSections[0].Finding, bSections[0].OutcomeType
	cols.BSection2Finding, cols.BSection2Type = bSections[1].Finding, bSections[1].OutcomeType
	cols.BSection3Finding, cols.BSection3Type = bSections[2].Finding, bSections[2].OutcomeType
	cols.BSection4Finding, cols.BSection4Type = bSections[3].Finding, bSections[3].OutcomeType
	cols.BVerdict = sr.FactorB.Verdict

	cSections := make([]model.OrientedSection, 4)
	copy(cSections, sr.FactorC.Sections)
	cols.ScoreC = sr.FactorC.Score
	cols.CSection1Orientation, cols.CSection1Evidence = cSections[0].Orientation, cSections[0].Evidence
	cols.CSection2Orientation, cols.CSection2Evidence = cSections[1].Orientation, cSections[1].Evidence
	cols.CSection3Orientation, cols.CSection3Evidence = cSections[2].Orientation, cSections[2].Evidence
	cols.CSection4Orientation, cols.CSection4Evidence = cSections[3].Orientation, cSections[3].Evidence
	cols.CVerdict = sr.FactorC.Verdict

	cols.ScoreD = sr.FactorD.Score
	changes := make([]string, 0, len(sr.FactorD.Changes))
	for _, ch := range sr.FactorD.Changes {
		changes = append(changes, fmt.Sprintf("%s (%s): %s → %s", ch.Name, ch.Date, ch.Before, ch.After))
	}
	cols.DChanges = strings.Join(changes, "; ")
	cols.DVerdict = sr.FactorD.Verdict

	cols.ScoreE = sr.FactorE.Score
	cols.EAudienceBefore = joinAudience(sr.FactorE.Before)
	cols.EAudienceToday = joinAudience(sr.FactorE.Today)
	cols.EVerdict = sr.FactorE.Verdict

	cols.ScoreF = sr.FactorF.Score
	products := make([]string, 0, len(sr.FactorF.Products))
	for _, p := range sr.FactorF.Products {
		products = append(products, fmt.Sprintf("%s (%s)", p.Name, p.Tag))
	}
	cols.FProducts = strings.Join(products, ", ")
	cols.FDescription = sr.FactorF.Description
	cols.FVerdict = sr.FactorF.Verdict

	return cols
}

var (
	changePattern  = regexp.MustCompile(`^(.*) \(([^)]*)\): (.*) → (.*)$`)
	productPattern = regexp.MustCompile(`^(.*) \(([^)]*)\)$`)
)

// Rehydrate rebuilds the nested factor objects from the flat column set.
// Run-level scalars (total score, fit, summary, disqualification reason) live
// on the run row, not in ScoreColumns; the caller fills them in. Trailing
// empty sections are dropped, so a flatten of a four-section result followed
// by a rehydrate is exact for everything that avoids the join delimiters.
func Rehydrate(cols model.ScoreColumns) model.ScoringResult {
	var sr model.ScoringResult

	names := [4]string{cols.HomepageSection1Name, cols.HomepageSection2Name, cols.HomepageSection3Name, cols.HomepageSection4Name}

	sr.FactorA = model.FactorA{
		Score:           cols.ScoreA,
		Differentiators: splitList(cols.ADifferentiators, "; "),
		HomepageSections: trimSections([]model.HomepageSection{
			{Name: names[0], Finding: cols.ASection1Finding, Status: cols.ASection1Status},
			{Name: names[1], Finding: cols.ASection2Finding, Status: cols.ASection2Status},
			{Name: names[2], Finding: cols.ASection3Finding, Status: cols.ASection3Status},
			{Name: names[3], Finding: cols.ASection4Finding, Status: cols.ASection4Status},
		}),
		Verdict: cols.AVerdict,
	}

	sr.FactorB = model.FactorB{
		Score:             cols.ScoreB,
		DecisionMaker:     cols.BDecisionMaker,
		StrategicOutcomes: splitList(cols.BStrategicOutcomes, "; "),
		TacticalOutcomes:  splitList(cols.BTacticalOutcomes, "; "),
		HomepageSections: trimSections([]model.HomepageSection{
			{Name: names[0], Finding: cols.BSection1Finding, OutcomeType: cols.BSection1Type},
			{Name: names[1], Finding: cols.BSection2Finding, OutcomeType: cols.BSection2Type},
			{Name: names[2], Finding: cols.BSection3Finding, OutcomeType: cols.BSection3Type},
			{Name: names[3], Finding: cols.BSection4Finding, OutcomeType: cols.BSection4Type},
		}),
		Verdict: cols.BVerdict,
	}

	cSections := []model.OrientedSection{
		{Name: names[0], Orientation: cols.CSection1Orientation, Evidence: cols.CSection1Evidence},
		{Name: names[1], Orientation: cols.CSection2Orientation, Evidence: cols.CSection2Evidence},
		{Name: names[2], Orientation: cols.CSection3Orientation, Evidence: cols.CSection3Evidence},
		{Name: names[3], Orientation: cols.CSection4Orientation, Evidence: cols.CSection4Evidence},
	}
	for len(cSections) > 0 {
		last := cSections[len(cSections)-1]
		if last.Name == "" && last.Orientation == "" && last.Evidence == "" {
			cSections = cSections[:len(cSections)-1]
			continue
		}
		break
	}
	sr.FactorC = model.FactorC{Score: cols.ScoreC, Sections: cSections, Verdict: cols.CVerdict}

	var changes []model.ProductChange
	for _, part := range splitList(cols.DChanges, "; ") {
		if m := changePattern.FindStringSubmatch(part); m != nil {
			changes = append(changes, model.ProductChange{Name: m[1], Date: m[2], Before: m[3], After: m[4]})
		} else {
			changes = append(changes, model.ProductChange{Name: part})
		}
	}
	sr.FactorD = model.FactorD{Score: cols.ScoreD, Changes: changes, Verdict: cols.DVerdict}

	sr.FactorE = model.FactorE{
		Score:   cols.ScoreE,
		Before:  splitAudience(cols.EAudienceBefore),
		Today:   splitAudience(cols.EAudienceToday),
		Verdict: cols.EVerdict,
	}

	var products []model.Product
	for _, part := range splitList(cols.FProducts, ", ") {
		if m := productPattern.FindStringSubmatch(part); m != nil {
			products = append(products, model.Product{Name: m[1], Tag: m[2]})
		} else {
			products = append(products, model.Product{Name: part})
		}
	}
	sr.FactorF = model.FactorF{
		Score:       cols.ScoreF,
		Products:    products,
		Description: cols.FDescription,
		Verdict:     cols.FVerdict,
	}

	return sr
}

func pad4(sections []model.HomepageSection) [4]model.HomepageSection {
	var out [4]model.HomepageSection
	copy(out[:], sections)
	return out
}

func trimSections(sections []model.HomepageSection) []model.HomepageSection {
	for len(sections) > 0 {
		last := sections[len(sections)-1]
		if last.Name == "" && last.Finding == "" && last.Status == "" && last.OutcomeType == "" {
			sections = sections[:len(sections)-1]
			continue
		}
		break
	}
	return sections
}

func joinAudience(a model.Audience) string {
	if a.Buyer == "" && a.Department == "" && a.Market == "" {
		return ""
	}
	return a.Buyer + " — " + a.Department + " — " + a.Market
}

func splitAudience(s string) model.Audience {
	if s == "" {
		return model.Audience{}
	}
	parts := strings.SplitN(s, " — ", 3)
	var a model.Audience
	if len(parts) > 0 {
		a.Buyer = parts[0]
	}
	if len(parts) > 1 {
		a.Department = parts[1]
	}
	if len(parts) > 2 {
		a.Market = parts[2]
	}
	return a
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
