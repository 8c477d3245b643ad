package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/services/grading"
)

// PDFExporter renders analysis records as PDF reports
type PDFExporter struct {
	generatedBy string
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{generatedBy: "netpath"}
}

// ExportAnalysis generates a PDF with the path, hop table, verdict, insights and recommendations.
func (e *PDFExporter) ExportAnalysis(record *domain.AnalysisRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("no analysis to export")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	e.addHeader(pdf, record)
	e.addVerdict(pdf, &record.Result)
	e.addPathSummary(pdf, record.Result.Path)
	e.addHops(pdf, record.Result.Path)
	e.addList(pdf, "Insights", record.Result.Insights, "No insights for this measurement")
	e.addList(pdf, "Recommendations", record.Result.Recommendations, "No recommendations")
	e.addFooter(pdf, record)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, record *domain.AnalysisRecord) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Network Path Report", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Arial", "", 13)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, "Target: "+record.Target, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Measured: %s", record.CreatedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

// addVerdict draws one coloured box per graded direction.
func (e *PDFExporter) addVerdict(pdf *gofpdf.Fpdf, r *domain.PathAnalysisResult) {
	realistic := 0
	if r.Path != nil {
		realistic = r.Path.RealisticMaxMbps
	}

	boxes := []struct {
		label      string
		grade      domain.PerformanceGrade
		measured   float64
		efficiency float64
		loss       float64
	}{
		{"Target to server", r.FromGrade, r.MeasuredFromMbps, r.FromEfficiencyPct, r.FromLossPct},
		{"Server to target", r.ToGrade, r.MeasuredToMbps, r.ToEfficiencyPct, r.ToLossPct},
	}

	y := pdf.GetY()
	for i, b := range boxes {
		x := 20.0 + float64(i)*87
		cr, cg, cb := gradeColor(b.grade)
		pdf.SetFillColor(cr, cg, cb)
		pdf.Rect(x, y, 83, 30, "F")

		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "", 9)
		pdf.SetXY(x+4, y+3)
		pdf.CellFormat(75, 5, b.label, "", 0, "L", false, 0, "")

		grade := string(b.grade)
		if grade == "" {
			grade = "Not graded"
		}
		pdf.SetFont("Arial", "B", 16)
		pdf.SetXY(x+4, y+9)
		pdf.CellFormat(75, 9, grade, "", 0, "L", false, 0, "")

		if b.grade != domain.GradeNone {
			pdf.SetFont("Arial", "", 9)
			pdf.SetXY(x+4, y+20)
			detail := fmt.Sprintf("%.0f of %d Mbps (%.0f%%)", b.measured, realistic, b.efficiency)
			if b.loss > 0 {
				detail += fmt.Sprintf(", %.1f%% retransmits", b.loss)
			}
			pdf.CellFormat(75, 6, detail, "", 0, "L", false, 0, "")
		}
	}

	pdf.SetY(y + 36)
}

func gradeColor(g domain.PerformanceGrade) (r, gr, b int) {
	switch g {
	case domain.GradeExcellent:
		return 52, 199, 89
	case domain.GradeGood:
		return 48, 150, 80
	case domain.GradeFair:
		return 255, 170, 0
	case domain.GradePoor:
		return 255, 110, 0
	case domain.GradeCritical:
		return 220, 53, 69
	default:
		return 150, 150, 150
	}
}

func (e *PDFExporter) addPathSummary(pdf *gofpdf.Fpdf, p *domain.NetworkPath) {
	sectionTitle(pdf, "Path")

	if p == nil || !p.IsValid {
		msg := "Path unavailable"
		if p != nil && p.ErrorMessage != "" {
			msg += ": " + p.ErrorMessage
		}
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(180, 40, 40)
		pdf.MultiCell(0, 6, msg, "", "L", false)
		pdf.Ln(4)
		return
	}

	rows := [][2]string{
		{"Source", endpointLabel(p.Source)},
		{"Destination", endpointLabel(p.Destination)},
		{"Theoretical max", grading.FormatSpeed(p.TheoreticalMaxMbps)},
		{"Realistic max", grading.FormatSpeed(p.RealisticMaxMbps)},
	}
	if p.RequiresRouting {
		gw := p.GatewayName
		if p.GatewayModel != "" {
			gw += " (" + p.GatewayModel + ")"
		}
		rows = append(rows, [2]string{"Routed via", gw})
	}
	if p.HasRealBottleneck {
		rows = append(rows, [2]string{"Bottleneck", p.BottleneckDescription})
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(40, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func endpointLabel(ep domain.Endpoint) string {
	parts := []string{}
	if ep.Name != "" {
		parts = append(parts, ep.Name)
	}
	if ep.IP != "" {
		parts = append(parts, ep.IP)
	}
	label := strings.Join(parts, " / ")
	if ep.NetworkName != "" {
		label += fmt.Sprintf(" [%s, VLAN %d]", ep.NetworkName, ep.VLAN)
	}
	return label
}

func (e *PDFExporter) addHops(pdf *gofpdf.Fpdf, p *domain.NetworkPath) {
	if p == nil || len(p.Hops) == 0 {
		return
	}
	sectionTitle(pdf, "Hops")

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 8, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(46, 8, "Device", "1", 0, "L", true, 0, "")
	pdf.CellFormat(38, 8, "In", "1", 0, "L", true, 0, "")
	pdf.CellFormat(38, 8, "Out", "1", 0, "L", true, 0, "")
	pdf.CellFormat(10, 8, "", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, h := range p.Hops {
		if h.IsBottleneck {
			pdf.SetTextColor(220, 53, 69)
		} else {
			pdf.SetTextColor(60, 60, 60)
		}
		name := h.DeviceName
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		flag := ""
		if h.IsBottleneck {
			flag = "!"
		}
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", h.Order), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 7, string(h.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(46, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(38, 7, sideLabel(h, true), "1", 0, "L", false, 0, "")
		pdf.CellFormat(38, 7, sideLabel(h, false), "1", 0, "L", false, 0, "")
		pdf.CellFormat(10, 7, flag, "1", 1, "C", false, 0, "")

		if h.Notes != "" {
			pdf.SetFont("Arial", "I", 7)
			pdf.SetTextColor(110, 110, 110)
			pdf.CellFormat(10, 5, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, h.Notes, "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 8)
		}
	}
	pdf.Ln(6)
}

// sideLabel renders "1 Gbps port 3", or "" when the side is unused.
func sideLabel(h domain.Hop, ingress bool) string {
	speed := h.EgressSpeedMbps
	if ingress {
		speed = h.IngressSpeedMbps
	}
	if speed <= 0 {
		return ""
	}
	return grading.FormatSpeed(speed) + " " + grading.LinkLabel(h, ingress)
}

func (e *PDFExporter) addList(pdf *gofpdf.Fpdf, title string, items []string, empty string) {
	sectionTitle(pdf, title)

	if len(items) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, empty, "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	for _, item := range items {
		pdf.CellFormat(5, 6, "-", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, item, "", "L", false)
	}
	pdf.Ln(4)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, record *domain.AnalysisRecord) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := record.ID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s | Analysis ID: %s", e.generatedBy, id), "", 1, "C", false, 0, "")
}
