package storage

import (
	"encoding/json"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// toDomain converts a database model to a domain record.
func toDomain(m AnalysisModel) (domain.AnalysisRecord, error) {
	rec := domain.AnalysisRecord{
		ID:        m.ID,
		CreatedAt: m.CreatedAt.UTC(),
		Target:    m.Target,
		Result: domain.PathAnalysisResult{
			MeasuredFromMbps:  m.FromMbps,
			MeasuredToMbps:    m.ToMbps,
			FromEfficiencyPct: m.FromEfficiency,
			ToEfficiencyPct:   m.ToEfficiency,
			FromGrade:         domain.PerformanceGrade(m.FromGrade),
			ToGrade:           domain.PerformanceGrade(m.ToGrade),
			FromLossPct:       m.FromLossPct,
			ToLossPct:         m.ToLossPct,
		},
	}

	if err := decodeText(m.Retransmits, &rec.Retransmits); err != nil {
		return rec, &DatabaseError{Op: "decode retransmits", Err: err}
	}
	if m.Path != "" {
		rec.Result.Path = &domain.NetworkPath{}
		if err := decodeText(m.Path, rec.Result.Path); err != nil {
			return rec, &DatabaseError{Op: "decode path", Err: err}
		}
	}
	if err := decodeText(m.Insights, &rec.Result.Insights); err != nil {
		return rec, &DatabaseError{Op: "decode insights", Err: err}
	}
	if err := decodeText(m.Recommendations, &rec.Result.Recommendations); err != nil {
		return rec, &DatabaseError{Op: "decode recommendations", Err: err}
	}
	if rec.Result.Insights == nil {
		rec.Result.Insights = []string{}
	}
	if rec.Result.Recommendations == nil {
		rec.Result.Recommendations = []string{}
	}
	return rec, nil
}

// toModel converts a domain record to a database model.
func toModel(r domain.AnalysisRecord) (AnalysisModel, error) {
	res := r.Result
	model := AnalysisModel{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt.UTC(),
		Target:         r.Target,
		FromMbps:       res.MeasuredFromMbps,
		ToMbps:         res.MeasuredToMbps,
		FromEfficiency: res.FromEfficiencyPct,
		ToEfficiency:   res.ToEfficiencyPct,
		FromGrade:      string(res.FromGrade),
		ToGrade:        string(res.ToGrade),
		FromLossPct:    res.FromLossPct,
		ToLossPct:      res.ToLossPct,
	}

	if p := res.Path; p != nil {
		model.TargetType = string(p.TargetType())
		model.IsValid = p.IsValid
		model.TheoreticalMaxMbps = p.TheoreticalMaxMbps
		model.RealisticMaxMbps = p.RealisticMaxMbps
		model.Bottleneck = p.BottleneckDescription

		b, err := json.Marshal(p)
		if err != nil {
			return model, err
		}
		model.Path = string(b)
	}

	var err error
	if model.Retransmits, err = encodeText(r.Retransmits); err != nil {
		return model, err
	}
	if model.Insights, err = encodeText(res.Insights); err != nil {
		return model, err
	}
	if model.Recommendations, err = encodeText(res.Recommendations); err != nil {
		return model, err
	}
	return model, nil
}

func encodeText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeText(s string, out any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
