package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/netpath/internal/adapters/web"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

var validate = validator.New()

// AnalysisHandler serves measurement grading and history.
type AnalysisHandler struct {
	Service ports.PathService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(service ports.PathService) *AnalysisHandler {
	return &AnalysisHandler{Service: service}
}

// HandleAnalyze grades a measured sample against the traced path and stores it.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req domain.AnalyzeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Target = strings.TrimSpace(req.Target)
	if err := validate.Struct(req); err != nil {
		web.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	record, err := h.Service.Analyze(r.Context(), req)
	if err != nil {
		web.WriteError(w, statusFor(err), err.Error())
		return
	}
	web.WriteJSON(w, http.StatusCreated, record)
}

// HandleList returns recent analyses, newest first, optionally for one target.
func (h *AnalysisHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			web.WriteError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	records, err := h.Service.History(r.Context(), strings.TrimSpace(q.Get("target")), limit)
	if err != nil {
		web.WriteError(w, statusFor(err), err.Error())
		return
	}
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	web.WriteJSON(w, http.StatusOK, records)
}

// HandleGet returns one analysis by id.
func (h *AnalysisHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, err := h.Service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, statusFor(err), err.Error())
		return
	}
	web.WriteJSON(w, http.StatusOK, record)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}
