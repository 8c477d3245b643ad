package grading

import (
	"math"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// DefaultTheoreticalMbps is assumed when no hop reports a link speed.
const DefaultTheoreticalMbps = 1000

const (
	wiredOverheadFactor      = 0.94
	wirelessEfficiencyFactor = 0.60
)

// wiredRealistic maps a negotiated Ethernet speed to measured TCP goodput.
var wiredRealistic = map[int]int{
	10:    9,
	100:   94,
	1000:  960,
	2500:  2390,
	5000:  4790,
	10000: 9910,
}

// RealisticMax converts a PHY speed into achievable throughput.
// Wireless links use a flat efficiency factor whatever the rate.
func RealisticMax(speedMbps int, wireless bool) int {
	if speedMbps <= 0 {
		return 0
	}
	if wireless {
		return int(math.Round(float64(speedMbps) * wirelessEfficiencyFactor))
	}
	if v, ok := wiredRealistic[speedMbps]; ok {
		return v
	}
	return int(math.Round(float64(speedMbps) * wiredOverheadFactor))
}

// Efficiency returns measured as a percentage of realistic, or 0 when either is unset.
func Efficiency(measuredMbps float64, realisticMbps int) float64 {
	if realisticMbps <= 0 || measuredMbps <= 0 {
		return 0
	}
	return measuredMbps * 100 / float64(realisticMbps)
}

// GradeFor maps an efficiency percentage to a grade. Lower bounds are inclusive.
func GradeFor(efficiencyPct float64) domain.PerformanceGrade {
	switch {
	case efficiencyPct >= 90:
		return domain.GradeExcellent
	case efficiencyPct >= 75:
		return domain.GradeGood
	case efficiencyPct >= 50:
		return domain.GradeFair
	case efficiencyPct >= 25:
		return domain.GradePoor
	default:
		return domain.GradeCritical
	}
}

// LossPct estimates packet loss from retransmits over bytes sent, assuming 1500 byte packets.
func LossPct(retransmits, bytes int64) float64 {
	if retransmits <= 0 || bytes <= 0 {
		return 0
	}
	packets := float64(bytes) / nominalPacketBytes
	return float64(retransmits) / packets * 100
}
