package grading

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// BottleneckCalculator finds the slowest link on a path.
type BottleneckCalculator struct{}

// NewBottleneckCalculator creates a new bottleneck calculator.
func NewBottleneckCalculator() *BottleneckCalculator {
	return &BottleneckCalculator{}
}

type slowest struct {
	hop      int
	speed    int
	ingress  bool
	wireless bool
}

// Apply sets the theoretical and realistic maxima on path and, when the path is
// not uniformly fast, flags the first hop carrying the minimum speed.
func (bc *BottleneckCalculator) Apply(path *domain.NetworkPath) {
	if path == nil {
		return
	}

	for i := range path.Hops {
		path.Hops[i].IsBottleneck = false
	}
	path.HasRealBottleneck = false
	path.BottleneckDescription = ""

	min := slowest{hop: -1}
	maxSpeed := 0
	for i, h := range path.Hops {
		sides := [2]slowest{
			{hop: i, speed: h.IngressSpeedMbps, ingress: true, wireless: h.IsWirelessIngress},
			{hop: i, speed: h.EgressSpeedMbps, ingress: false, wireless: h.IsWirelessEgress},
		}
		for _, s := range sides {
			if s.speed <= 0 {
				continue
			}
			if min.hop < 0 || s.speed < min.speed {
				min = s
			}
			if s.speed > maxSpeed {
				maxSpeed = s.speed
			}
		}
	}

	if min.hop < 0 {
		path.TheoreticalMaxMbps = DefaultTheoreticalMbps
		path.RealisticMaxMbps = RealisticMax(DefaultTheoreticalMbps, false)
		return
	}

	path.TheoreticalMaxMbps = min.speed
	path.RealisticMaxMbps = RealisticMax(min.speed, min.wireless)

	if min.speed < maxSpeed {
		hop := &path.Hops[min.hop]
		hop.IsBottleneck = true
		path.HasRealBottleneck = true
		path.BottleneckDescription = fmt.Sprintf("%s link at %s (%s)",
			FormatSpeed(min.speed), hop.DeviceName, LinkLabel(*hop, min.ingress))
	}
}

// FormatSpeed renders Mbps below 1000 and Gbps with at most one decimal above.
func FormatSpeed(mbps int) string {
	if mbps < 1000 {
		return fmt.Sprintf("%d Mbps", mbps)
	}
	gbps := math.Round(float64(mbps)/100) / 10
	return strconv.FormatFloat(gbps, 'f', -1, 64) + " Gbps"
}

// LinkLabel names the ingress or egress side of a hop for display.
func LinkLabel(h domain.Hop, ingress bool) string {
	port, name, band, wireless := h.EgressPort, h.EgressPortName, h.WirelessEgressBand, h.IsWirelessEgress
	if ingress {
		port, name, band, wireless = h.IngressPort, h.IngressPortName, h.WirelessIngressBand, h.IsWirelessIngress
	}

	switch {
	case wireless && name == domain.PortLabelWirelessMesh:
		return name
	case wireless && band != "":
		return band
	case !wireless && port > 0:
		return fmt.Sprintf("port %d", port)
	case name != "":
		return name
	default:
		return domain.PortLabelWiFi
	}
}
