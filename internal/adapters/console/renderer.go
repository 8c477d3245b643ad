// Package console renders paths and graded analyses for terminals.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/services/grading"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AFFF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	bottleneckStyle = cellStyle.
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)
)

var gradeColors = map[domain.PerformanceGrade]lipgloss.Color{
	domain.GradeExcellent: lipgloss.Color("#00FF00"),
	domain.GradeGood:      lipgloss.Color("#7CFC00"),
	domain.GradeFair:      lipgloss.Color("#FFD700"),
	domain.GradePoor:      lipgloss.Color("#FF8C00"),
	domain.GradeCritical:  lipgloss.Color("#FF0000"),
}

// Renderer formats domain values as styled terminal text.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderServer describes where the measurement server is attached.
func (r *Renderer) RenderServer(pos domain.ServerPosition) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Measurement server") + "\n")
	field(&b, "Address", pos.IP)
	if pos.Hostname != "" {
		field(&b, "Hostname", pos.Hostname)
	}
	attach := pos.DeviceName
	if pos.IsWireless {
		attach += fmt.Sprintf(" (Wi-Fi %s, %s)", pos.RadioBand, grading.FormatSpeed(pos.TxRateMbps))
	} else if pos.SwitchPort > 0 {
		attach += fmt.Sprintf(" port %d", pos.SwitchPort)
	}
	field(&b, "Attached to", attach)
	if pos.NetworkName != "" {
		field(&b, "Network", fmt.Sprintf("%s (VLAN %d)", pos.NetworkName, pos.VLAN))
	}
	return b.String()
}

// RenderPath draws the hop table and the capacity summary.
func (r *Renderer) RenderPath(p *domain.NetworkPath) string {
	var b strings.Builder
	if p == nil {
		return errorStyle.Render("No path") + "\n"
	}

	b.WriteString(titleStyle.Render("Path to "+p.TargetHost) + "\n")
	if !p.IsValid {
		b.WriteString(errorStyle.Render("Path unavailable: "+p.ErrorMessage) + "\n")
		return b.String()
	}

	field(&b, "Source", endpointLabel(p.Source))
	field(&b, "Destination", endpointLabel(p.Destination))
	if p.RequiresRouting {
		field(&b, "Routed via", strings.TrimSpace(p.GatewayName+" "+p.GatewayModel))
	}
	b.WriteString("\n")
	b.WriteString(r.hopTable(p.Hops) + "\n")

	field(&b, "Theoretical max", grading.FormatSpeed(p.TheoreticalMaxMbps))
	field(&b, "Realistic max", grading.FormatSpeed(p.RealisticMaxMbps))
	if p.HasRealBottleneck {
		field(&b, "Bottleneck", p.BottleneckDescription)
	}
	return b.String()
}

func (r *Renderer) hopTable(hops []domain.Hop) string {
	rows := make([][]string, 0, len(hops))
	for _, h := range hops {
		rows = append(rows, []string{
			fmt.Sprintf("%d", h.Order),
			string(h.Type),
			h.DeviceName,
			sideLabel(h, true),
			sideLabel(h, false),
			h.Notes,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers("#", "TYPE", "DEVICE", "IN", "OUT", "NOTES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(hops) && hops[row].IsBottleneck {
				return bottleneckStyle
			}
			return cellStyle
		})
	return t.String()
}

// RenderAnalysis shows the per-direction verdict plus insights and recommendations.
func (r *Renderer) RenderAnalysis(res domain.PathAnalysisResult) string {
	var b strings.Builder

	verdicts := []string{
		verdict("Target -> server", res.FromGrade, res.MeasuredFromMbps, res.FromEfficiencyPct, res.FromLossPct),
		verdict("Server -> target", res.ToGrade, res.MeasuredToMbps, res.ToEfficiencyPct, res.ToLossPct),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, verdicts...) + "\n")

	list(&b, "Insights", res.Insights)
	list(&b, "Recommendations", res.Recommendations)
	return b.String()
}

func verdict(label string, g domain.PerformanceGrade, measured, efficiency, loss float64) string {
	if g == domain.GradeNone {
		return boxStyle.Render(label + "\n" + labelStyle.Render("not graded"))
	}
	grade := lipgloss.NewStyle().Bold(true).Foreground(gradeColors[g]).Render(string(g))
	detail := fmt.Sprintf("%.0f Mbps, %.0f%% of realistic", measured, efficiency)
	if loss > 0 {
		detail += fmt.Sprintf("\n%.1f%% retransmits", loss)
	}
	return boxStyle.Render(label + "\n" + grade + "\n" + detail)
}

func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label+":")) + " " + value + "\n")
}

func endpointLabel(ep domain.Endpoint) string {
	label := ep.IP
	if ep.Name != "" {
		label = ep.Name + " (" + ep.IP + ")"
	}
	if ep.NetworkName != "" {
		label += fmt.Sprintf(" on %s VLAN %d", ep.NetworkName, ep.VLAN)
	}
	return label
}

func sideLabel(h domain.Hop, ingress bool) string {
	speed := h.EgressSpeedMbps
	if ingress {
		speed = h.IngressSpeedMbps
	}
	if speed <= 0 {
		return "-"
	}
	return grading.FormatSpeed(speed) + " " + grading.LinkLabel(h, ingress)
}
