package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lcalzada-xor/netpath/internal/adapters/web"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

// TopologyResponse is the JSON view of a snapshot.
type TopologyResponse struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Devices   []domain.Device  `json:"devices"`
	Clients   []domain.Client  `json:"clients"`
	Networks  []domain.Network `json:"networks"`
}

// PathHandler serves the server position, topology and path endpoints.
type PathHandler struct {
	Service ports.PathService
}

// NewPathHandler creates a new PathHandler
func NewPathHandler(service ports.PathService) *PathHandler {
	return &PathHandler{Service: service}
}

// HandleServer returns where the measurement server is attached.
func (h *PathHandler) HandleServer(w http.ResponseWriter, r *http.Request) {
	pos, err := h.Service.ServerPosition(r.Context())
	if err != nil {
		web.WriteError(w, statusFor(err), err.Error())
		return
	}
	web.WriteJSON(w, http.StatusOK, pos)
}

// HandleTopology returns the current inventory snapshot.
func (h *PathHandler) HandleTopology(w http.ResponseWriter, r *http.Request) {
	topo, err := h.Service.Topology(r.Context())
	if err != nil {
		web.WriteError(w, statusFor(err), err.Error())
		return
	}
	web.WriteJSON(w, http.StatusOK, TopologyResponse{
		FetchedAt: topo.FetchedAt,
		Devices:   topo.Devices(),
		Clients:   topo.Clients(),
		Networks:  topo.Networks(),
	})
}

// HandlePath traces the path to ?target=. Unresolvable targets still return 200
// with is_valid=false and the reason in error_message.
func (h *PathHandler) HandlePath(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("target"))
	if target == "" {
		web.WriteError(w, http.StatusBadRequest, "target query parameter is required")
		return
	}
	if len(target) > 253 {
		web.WriteError(w, http.StatusBadRequest, "target is too long")
		return
	}
	web.WriteJSON(w, http.StatusOK, h.Service.ComputePath(r.Context(), target))
}

// HandleHealth is the liveness probe.
func (h *PathHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
