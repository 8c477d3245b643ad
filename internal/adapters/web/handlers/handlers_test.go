package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/netpath/internal/adapters/web"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body web.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestPathHandler_HandleServer(t *testing.T) {
	tests := []struct {
		name   string
		pos    domain.ServerPosition
		err    error
		status int
	}{
		{"attached", domain.ServerPosition{IP: "192.168.1.10", SwitchMAC: "aa:aa:aa:00:00:02"}, nil, http.StatusOK},
		{"not in inventory", domain.ServerPosition{}, &domain.ResolutionError{Subject: "server", Reason: "no client matched"}, http.StatusNotFound},
		{"controller down", domain.ServerPosition{}, domain.ErrDataUnavailable, http.StatusServiceUnavailable},
		{"unexpected", domain.ServerPosition{}, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(web.MockPathService)
			svc.On("ServerPosition", mock.Anything).Return(tt.pos, tt.err)

			w := httptest.NewRecorder()
			NewPathHandler(svc).HandleServer(w, httptest.NewRequest(http.MethodGet, "/api/server", nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.err == nil {
				assert.Contains(t, w.Body.String(), "192.168.1.10")
			} else {
				assert.NotEmpty(t, decodeError(t, w))
			}
		})
	}
}

func TestPathHandler_HandleTopology(t *testing.T) {
	topo := domain.NewTopology(
		[]domain.Device{{MAC: "aa:aa:aa:00:00:01", Name: "Gateway", Role: domain.RoleGateway}},
		[]domain.Client{{MAC: "cc:cc:cc:00:00:01", Hostname: "nas", IsWired: true}},
		nil, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := new(web.MockPathService)
	svc.On("Topology", mock.Anything).Return(topo, nil)

	w := httptest.NewRecorder()
	NewPathHandler(svc).HandleTopology(w, httptest.NewRequest(http.MethodGet, "/api/topology", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp TopologyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Devices, 1)
	assert.Len(t, resp.Clients, 1)
	assert.Equal(t, "Gateway", resp.Devices[0].Name)
}

func TestPathHandler_HandleTopology_Unavailable(t *testing.T) {
	svc := new(web.MockPathService)
	svc.On("Topology", mock.Anything).Return(nil, domain.ErrDataUnavailable)

	w := httptest.NewRecorder()
	NewPathHandler(svc).HandleTopology(w, httptest.NewRequest(http.MethodGet, "/api/topology", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPathHandler_HandlePath(t *testing.T) {
	svc := new(web.MockPathService)
	valid := &domain.NetworkPath{TargetHost: "nas", IsValid: true, Hops: []domain.Hop{{Type: domain.HopClient}, {Order: 1, Type: domain.HopServer}}}
	invalid := domain.InvalidPath("ghost", `target "ghost" not found: no device or client matched`)
	svc.On("ComputePath", mock.Anything, "nas").Return(valid)
	svc.On("ComputePath", mock.Anything, "ghost").Return(invalid)

	h := NewPathHandler(svc)

	w := httptest.NewRecorder()
	h.HandlePath(w, httptest.NewRequest(http.MethodGet, "/api/path?target=+nas+", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.NetworkPath
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsValid)
	assert.Len(t, got.Hops, 2)

	w = httptest.NewRecorder()
	h.HandlePath(w, httptest.NewRequest(http.MethodGet, "/api/path?target=ghost", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.IsValid)
	assert.Contains(t, got.ErrorMessage, "ghost")

	w = httptest.NewRecorder()
	h.HandlePath(w, httptest.NewRequest(http.MethodGet, "/api/path", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.HandlePath(w, httptest.NewRequest(http.MethodGet, "/api/path?target="+strings.Repeat("a", 300), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNumberOfCalls(t, "ComputePath", 2)
}

func TestAnalysisHandler_HandleAnalyze(t *testing.T) {
	record := domain.AnalysisRecord{ID: "a1", Target: "nas", Result: domain.PathAnalysisResult{FromGrade: domain.GradeGood}}

	tests := []struct {
		name      string
		body      string
		mockSetup func(*web.MockPathService)
		status    int
	}{
		{
			name: "valid",
			body: `{"target":" nas ","from_mbps":850,"to_mbps":900,"retransmits":{"from_retransmits":3,"from_bytes":1000000}}`,
			mockSetup: func(m *web.MockPathService) {
				m.On("Analyze", mock.Anything, mock.MatchedBy(func(req domain.AnalyzeRequest) bool {
					return req.Target == "nas" && req.FromMbps == 850 && req.Retransmits.FromRetransmits == 3
				})).Return(record, nil)
			},
			status: http.StatusCreated,
		},
		{name: "malformed json", body: `{"target":`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"target":"nas","speed":1}`, status: http.StatusBadRequest},
		{name: "missing target", body: `{"from_mbps":100}`, status: http.StatusBadRequest},
		{name: "negative throughput", body: `{"target":"nas","from_mbps":-1}`, status: http.StatusBadRequest},
		{name: "negative retransmits", body: `{"target":"nas","retransmits":{"to_retransmits":-4}}`, status: http.StatusBadRequest},
		{
			name: "service rejects",
			body: `{"target":"nas"}`,
			mockSetup: func(m *web.MockPathService) {
				m.On("Analyze", mock.Anything, mock.Anything).Return(domain.AnalysisRecord{}, domain.ErrInvalidRequest)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			body: `{"target":"nas"}`,
			mockSetup: func(m *web.MockPathService) {
				m.On("Analyze", mock.Anything, mock.Anything).Return(domain.AnalysisRecord{}, errors.New("disk full"))
			},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(web.MockPathService)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			NewAnalysisHandler(svc).HandleAnalyze(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusCreated {
				var got domain.AnalysisRecord
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "a1", got.ID)
			}
			if tt.mockSetup == nil {
				svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAnalysisHandler_HandleList(t *testing.T) {
	svc := new(web.MockPathService)
	svc.On("History", mock.Anything, "", defaultHistoryLimit).Return([]domain.AnalysisRecord{{ID: "a"}, {ID: "b"}}, nil)
	svc.On("History", mock.Anything, "nas", 5).Return(nil, nil)
	h := NewAnalysisHandler(svc)

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/analyses", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.AnalysisRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	w = httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/analyses?target=nas&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for _, bad := range []string{"0", "-1", "abc", "100000"} {
		w = httptest.NewRecorder()
		h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/analyses?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", bad)
	}
}

func TestAnalysisHandler_HandleGet(t *testing.T) {
	svc := new(web.MockPathService)
	svc.On("Get", mock.Anything, "a1").Return(domain.AnalysisRecord{ID: "a1", Target: "nas"}, nil)
	svc.On("Get", mock.Anything, "missing").Return(domain.AnalysisRecord{}, domain.ErrNotFound)
	h := NewAnalysisHandler(svc)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/analyses/a1", nil), map[string]string{"id": "a1"})
	w := httptest.NewRecorder()
	h.HandleGet(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"target":"nas"`)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/analyses/missing", nil), map[string]string{"id": "missing"})
	w = httptest.NewRecorder()
	h.HandleGet(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type stubExporter struct {
	data []byte
	err  error
	got  *domain.AnalysisRecord
}

func (s *stubExporter) ExportAnalysis(record *domain.AnalysisRecord) ([]byte, error) {
	s.got = record
	return s.data, s.err
}

func TestReportHandler_HandleAnalysisPDF(t *testing.T) {
	svc := new(web.MockPathService)
	svc.On("Get", mock.Anything, "3f2a9c44-1b7e").Return(domain.AnalysisRecord{ID: "3f2a9c44-1b7e", Target: "nas"}, nil)
	svc.On("Get", mock.Anything, "missing").Return(domain.AnalysisRecord{}, domain.ErrNotFound)

	exp := &stubExporter{data: []byte("%PDF-1.3 fake")}
	h := NewReportHandler(svc, exp)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/analyses/3f2a9c44-1b7e/report.pdf", nil), map[string]string{"id": "3f2a9c44-1b7e"})
	w := httptest.NewRecorder()
	h.HandleAnalysisPDF(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "netpath-3f2a9c44.pdf")
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())
	require.NotNil(t, exp.got)
	assert.Equal(t, "nas", exp.got.Target)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/analyses/missing/report.pdf", nil), map[string]string{"id": "missing"})
	w = httptest.NewRecorder()
	h.HandleAnalysisPDF(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	exp.err = errors.New("font missing")
	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/analyses/3f2a9c44-1b7e/report.pdf", nil), map[string]string{"id": "3f2a9c44-1b7e"})
	w = httptest.NewRecorder()
	h.HandleAnalysisPDF(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidTarget))
	assert.Equal(t, http.StatusNotFound, statusFor(&domain.ResolutionError{Subject: "target"}))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(errors.Join(domain.ErrDataUnavailable, context.DeadlineExceeded)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}
