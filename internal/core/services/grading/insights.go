package grading

import (
	"fmt"
	"math"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

const (
	nominalPacketBytes = 1500

	// Above this an access point's own CPU, not the network, limits a test against it.
	apCPUCeilingMbps = 4400

	lossThresholdPct = 1.0
	// Controller retransmit counters run hotter on UniFi APs and switches.
	infraLossThresholdPct = 3.0

	asymmetryThresholdPts = 20.0
	saturationRatio       = 0.9
	routingCapRatio       = 0.9
)

// InsightEngine turns a graded result into observations and actions.
type InsightEngine struct{}

// NewInsightEngine creates a new insight engine.
func NewInsightEngine() *InsightEngine {
	return &InsightEngine{}
}

// Generate evaluates every rule in order and appends to r.Insights and r.Recommendations.
func (ie *InsightEngine) Generate(r *domain.PathAnalysisResult) {
	path := r.Path

	if path == nil || !path.IsValid || !r.IsGraded() {
		r.Insights = append(r.Insights, "Path analysis unavailable.")
		if path != nil && path.ErrorMessage != "" {
			r.Insights = append(r.Insights, path.ErrorMessage)
		}
		return
	}

	target := path.TargetType()
	peak := math.Max(r.MeasuredFromMbps, r.MeasuredToMbps)

	if target == domain.HopGateway {
		r.Insights = append(r.Insights,
			"Results are limited by the gateway CPU, not the network: the gateway answers the test itself.")
		return
	}

	if target == domain.HopAccessPoint && peak > apCPUCeilingMbps {
		r.Insights = append(r.Insights,
			fmt.Sprintf("Results are limited by the access point CPU, not the network (above %d Mbps).", apCPUCeilingMbps))
		return
	}

	wireless := isWirelessPath(path)
	if wireless {
		r.Insights = append(r.Insights,
			"Path includes a wireless segment; throughput varies with signal quality and airtime contention.")
	}

	if path.HasRealBottleneck {
		r.Insights = append(r.Insights, "Slowest link: "+path.BottleneckDescription+".")
	}

	ie.efficiencyRules(r)

	if !wireless {
		switch {
		case path.TheoreticalMaxMbps == 100:
			r.Recommendations = append(r.Recommendations,
				"A link on this path negotiated 100 Mbps; check the cable and port auto-negotiation.")
		case path.TheoreticalMaxMbps == 1000 && peak >= saturationRatio*float64(path.RealisticMaxMbps):
			r.Recommendations = append(r.Recommendations,
				"The path is saturating its 1 GbE links; consider upgrading to 2.5G or 10G.")
		}
	}

	ie.lossRules(r, target, wireless)
	ie.routingRules(r, peak)
}

func (ie *InsightEngine) efficiencyRules(r *domain.PathAnalysisResult) {
	var graded []float64
	if r.FromGrade != domain.GradeNone {
		graded = append(graded, r.FromEfficiencyPct)
	}
	if r.ToGrade != domain.GradeNone {
		graded = append(graded, r.ToEfficiencyPct)
	}

	lowest := graded[0]
	for _, e := range graded[1:] {
		lowest = math.Min(lowest, e)
	}

	switch {
	case lowest < 25:
		r.Insights = append(r.Insights,
			fmt.Sprintf("Performance is below expected (%.0f%% of the realistic maximum).", lowest))
	case lowest < 75:
		r.Insights = append(r.Insights,
			fmt.Sprintf("Performance is moderate (%.0f%% of the realistic maximum).", lowest))
	}

	if len(graded) == 2 && math.Abs(r.FromEfficiencyPct-r.ToEfficiencyPct) > asymmetryThresholdPts {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("Directions differ by %.0f points; check duplex settings and asymmetric links.",
				math.Abs(r.FromEfficiencyPct-r.ToEfficiencyPct)))
	}
}

func (ie *InsightEngine) lossRules(r *domain.PathAnalysisResult, target domain.HopType, wireless bool) {
	threshold := lossThresholdPct
	if target == domain.HopAccessPoint || target == domain.HopSwitch {
		threshold = infraLossThresholdPct
	}

	fromHigh := r.FromLossPct > threshold
	toHigh := r.ToLossPct > threshold
	if !fromHigh && !toHigh {
		return
	}

	r.Insights = append(r.Insights,
		fmt.Sprintf("Elevated packet loss estimated from TCP retransmits (%.1f%% up, %.1f%% down).",
			r.FromLossPct, r.ToLossPct))

	switch {
	case target == domain.HopWirelessClient:
		r.Recommendations = append(r.Recommendations,
			"Check the Wi-Fi signal strength and interference at the client.")
	case target == domain.HopAccessPoint && r.Path.HasMeshHop():
		r.Recommendations = append(r.Recommendations,
			"Check the mesh backhaul quality; consider a wired uplink for this access point.")
	case !wireless && fromHigh && toHigh:
		r.Recommendations = append(r.Recommendations,
			"Loss in both directions on a wired path usually means faulty cabling; test or replace the cables.")
	}
}

func (ie *InsightEngine) routingRules(r *domain.PathAnalysisResult, peak float64) {
	for _, h := range r.Path.Hops {
		if h.RoutingCapMbps <= 0 {
			continue
		}
		if peak >= routingCapRatio*float64(h.RoutingCapMbps) {
			r.Insights = append(r.Insights,
				fmt.Sprintf("Throughput is close to the inter-VLAN routing capacity of %s (~%d Mbps).",
					h.DeviceName, h.RoutingCapMbps))
		}
		return
	}
}

// isWirelessPath is true for a wireless adjacency or any hop with a wireless side.
func isWirelessPath(p *domain.NetworkPath) bool {
	if p.HasWirelessConnection() {
		return true
	}
	for _, h := range p.Hops {
		if h.IsWirelessIngress || h.IsWirelessEgress {
			return true
		}
	}
	return false
}
