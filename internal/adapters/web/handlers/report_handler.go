package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/netpath/internal/adapters/web"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

// AnalysisExporter renders a stored analysis.
type AnalysisExporter interface {
	ExportAnalysis(record *domain.AnalysisRecord) ([]byte, error)
}

// ReportHandler serves PDF reports of stored analyses.
type ReportHandler struct {
	Service     ports.PathService
	PDFExporter AnalysisExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ports.PathService, exporter AnalysisExporter) *ReportHandler {
	return &ReportHandler{Service: service, PDFExporter: exporter}
}

// HandleAnalysisPDF streams /api/analyses/{id}/report.pdf.
func (h *ReportHandler) HandleAnalysisPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, err := h.Service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, statusFor(err), err.Error())
		return
	}

	data, err := h.PDFExporter.ExportAnalysis(&record)
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "failed to render report: "+err.Error())
		return
	}

	short := record.ID
	if len(short) > 8 {
		short = short[:8]
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="netpath-%s.pdf"`, short))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
