package domain

import "time"

// PerformanceGrade is the discrete verdict for one measured direction.
type PerformanceGrade string

const (
	GradeNone      PerformanceGrade = ""
	GradeExcellent PerformanceGrade = "Excellent"
	GradeGood      PerformanceGrade = "Good"
	GradeFair      PerformanceGrade = "Fair"
	GradePoor      PerformanceGrade = "Poor"
	GradeCritical  PerformanceGrade = "Critical"
)

// RetransmitCounters carries raw TCP retransmit and byte counts per direction.
// "From" is target -> server, "To" is server -> target.
type RetransmitCounters struct {
	FromRetransmits int64 `json:"from_retransmits" validate:"gte=0"`
	ToRetransmits   int64 `json:"to_retransmits" validate:"gte=0"`
	FromBytes       int64 `json:"from_bytes" validate:"gte=0"`
	ToBytes         int64 `json:"to_bytes" validate:"gte=0"`
}

// PathAnalysisResult grades a measured throughput sample against a path.
type PathAnalysisResult struct {
	Path *NetworkPath `json:"path"`

	MeasuredFromMbps float64 `json:"measured_from_mbps"`
	MeasuredToMbps   float64 `json:"measured_to_mbps"`

	FromEfficiencyPct float64          `json:"from_efficiency_pct"`
	ToEfficiencyPct   float64          `json:"to_efficiency_pct"`
	FromGrade         PerformanceGrade `json:"from_grade,omitempty"`
	ToGrade           PerformanceGrade `json:"to_grade,omitempty"`

	FromLossPct float64 `json:"from_loss_pct,omitempty"`
	ToLossPct   float64 `json:"to_loss_pct,omitempty"`

	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// IsGraded reports whether at least one direction received a grade.
func (r PathAnalysisResult) IsGraded() bool {
	return r.FromGrade != GradeNone || r.ToGrade != GradeNone
}

// AnalysisRecord is a persisted, identified analysis.
type AnalysisRecord struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Target      string             `json:"target"`
	Retransmits RetransmitCounters `json:"retransmits"`
	Result      PathAnalysisResult `json:"result"`
}

// AnalyzeRequest asks for a path to target plus a grade of the measured sample.
type AnalyzeRequest struct {
	Target      string             `json:"target" validate:"required,max=253"`
	FromMbps    float64            `json:"from_mbps" validate:"gte=0,lte=1000000"`
	ToMbps      float64            `json:"to_mbps" validate:"gte=0,lte=1000000"`
	Retransmits RetransmitCounters `json:"retransmits"`
}
