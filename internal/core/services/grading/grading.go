// Package grading turns a traced path and a throughput sample into a verdict.
package grading

import (
	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// GradeResult grades a measured sample against path. Both directions are graded
// whenever the realistic maximum is known; a measured 0 grades Critical. A path
// whose maxima were never computed is run through the bottleneck calculator first.
func GradeResult(path *domain.NetworkPath, fromMbps, toMbps float64, rc domain.RetransmitCounters) domain.PathAnalysisResult {
	r := domain.PathAnalysisResult{
		Path:             path,
		MeasuredFromMbps: fromMbps,
		MeasuredToMbps:   toMbps,
		Insights:         []string{},
		Recommendations:  []string{},
	}

	if path != nil && path.IsValid {
		if path.TheoreticalMaxMbps == 0 {
			NewBottleneckCalculator().Apply(path)
		}

		realistic := path.RealisticMaxMbps
		if realistic > 0 {
			r.FromEfficiencyPct = Efficiency(fromMbps, realistic)
			r.FromGrade = GradeFor(r.FromEfficiencyPct)
			r.ToEfficiencyPct = Efficiency(toMbps, realistic)
			r.ToGrade = GradeFor(r.ToEfficiencyPct)
		}

		r.FromLossPct = LossPct(rc.FromRetransmits, rc.FromBytes)
		r.ToLossPct = LossPct(rc.ToRetransmits, rc.ToBytes)
	}

	NewInsightEngine().Generate(&r)
	return r
}
