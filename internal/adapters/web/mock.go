package web

import (
	"context"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockPathService is a mock of ports.PathService
type MockPathService struct {
	mock.Mock
}

var _ ports.PathService = (*MockPathService)(nil)

func (m *MockPathService) ServerPosition(ctx context.Context) (domain.ServerPosition, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ServerPosition), args.Error(1)
}

func (m *MockPathService) Topology(ctx context.Context) (*domain.Topology, error) {
	args := m.Called(ctx)
	topo, _ := args.Get(0).(*domain.Topology)
	return topo, args.Error(1)
}

func (m *MockPathService) ComputePath(ctx context.Context, target string) *domain.NetworkPath {
	args := m.Called(ctx, target)
	return args.Get(0).(*domain.NetworkPath)
}

func (m *MockPathService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalysisRecord, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AnalysisRecord), args.Error(1)
}

func (m *MockPathService) History(ctx context.Context, target string, limit int) ([]domain.AnalysisRecord, error) {
	args := m.Called(ctx, target, limit)
	records, _ := args.Get(0).([]domain.AnalysisRecord)
	return records, args.Error(1)
}

func (m *MockPathService) Get(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AnalysisRecord), args.Error(1)
}
