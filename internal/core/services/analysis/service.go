package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lcalzada-xor/netpath/internal/adapters/cache"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"github.com/lcalzada-xor/netpath/internal/core/services/grading"
	"github.com/lcalzada-xor/netpath/internal/core/services/pathtrace"
	"github.com/lcalzada-xor/netpath/internal/core/services/topology"
	"github.com/lcalzada-xor/netpath/internal/telemetry"
)

// DefaultServerTTL is how long a resolved server position is reused.
const DefaultServerTTL = 5 * time.Minute

const serverKey = "server"

var validate = validator.New()

// Service orchestrates snapshot retrieval, target resolution, tracing and grading.
// It is the facade consumed by the HTTP and CLI adapters.
type Service struct {
	topology ports.TopologySource
	resolver *topology.TargetResolver
	addrs    ports.AddressProvider
	repo     ports.AnalysisRepository
	logger   *slog.Logger

	serverTTL time.Duration
	positions *cache.TTLCache[domain.ServerPosition]

	mu        sync.RWMutex
	publisher ports.AnalysisPublisher
}

// NewService creates the orchestrator. repo may be nil, which disables history.
func NewService(
	source ports.TopologySource,
	resolver *topology.TargetResolver,
	addrs ports.AddressProvider,
	repo ports.AnalysisRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		topology:  source,
		resolver:  resolver,
		addrs:     addrs,
		repo:      repo,
		logger:    logger,
		serverTTL: DefaultServerTTL,
		positions: cache.NewTTLCache[domain.ServerPosition](1),
	}
}

var _ ports.PathService = (*Service)(nil)

// SetServerTTL overrides how long the server position is cached.
func (s *Service) SetServerTTL(ttl time.Duration) {
	s.serverTTL = ttl
}

// SetPublisher injects the live feed notified after every analysis.
func (s *Service) SetPublisher(p ports.AnalysisPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// Topology returns the current snapshot.
func (s *Service) Topology(ctx context.Context) (*domain.Topology, error) {
	return s.topology.Snapshot(ctx)
}

// ServerPosition locates the measurement server, reusing a cached answer while fresh.
func (s *Service) ServerPosition(ctx context.Context) (domain.ServerPosition, error) {
	if pos, ok := s.cachedPosition(); ok {
		return pos, nil
	}

	topo, err := s.topology.Snapshot(ctx)
	if err != nil {
		return domain.ServerPosition{}, err
	}
	return s.locate(topo)
}

func (s *Service) cachedPosition() (domain.ServerPosition, bool) {
	pos, ok := s.positions.Get(serverKey)
	if ok {
		telemetry.CacheLookups.WithLabelValues("server_position", "hit").Inc()
	} else {
		telemetry.CacheLookups.WithLabelValues("server_position", "miss").Inc()
	}
	return pos, ok
}

// InvalidateServer forgets the cached server position.
func (s *Service) InvalidateServer() {
	s.positions.Delete(serverKey)
}

func (s *Service) locate(topo *domain.Topology) (domain.ServerPosition, error) {
	ips, err := s.addrs.LocalIPv4()
	if err != nil {
		return domain.ServerPosition{}, fmt.Errorf("list local addresses: %w", err)
	}

	pos, err := topology.ResolveServerPosition(topo, ips)
	if err != nil {
		return domain.ServerPosition{}, err
	}

	if s.serverTTL > 0 {
		s.positions.Set(serverKey, pos, s.serverTTL)
	}
	s.logger.Info("Measurement server located",
		"ip", pos.IP, "device", pos.DeviceName, "port", pos.SwitchPort, "wireless", pos.IsWireless)
	return pos, nil
}

// ComputePath traces target and annotates the bottleneck. Failures come back as an
// invalid path carrying the reason, never as an error.
func (s *Service) ComputePath(ctx context.Context, target string) *domain.NetworkPath {
	ctx, span := telemetry.Tracer().Start(ctx, "analysis.ComputePath")
	defer span.End()
	span.SetAttributes(attribute.String("path.target", target))

	path, outcome := s.computePath(ctx, target)

	telemetry.PathTraces.WithLabelValues(outcome).Inc()
	if path.IsValid {
		telemetry.PathHops.Observe(float64(len(path.Hops)))
		span.SetAttributes(
			attribute.Int("path.hops", len(path.Hops)),
			attribute.Bool("path.requires_routing", path.RequiresRouting),
			attribute.Int("path.theoretical_max_mbps", path.TheoreticalMaxMbps),
		)
	} else {
		span.SetStatus(codes.Error, path.ErrorMessage)
		s.logger.Warn("Path computation failed", "target", target, "reason", path.ErrorMessage)
	}
	return path
}

func (s *Service) computePath(ctx context.Context, target string) (*domain.NetworkPath, string) {
	target = strings.TrimSpace(target)
	if target == "" {
		return domain.InvalidPath(target, domain.ErrInvalidTarget.Error()), "invalid"
	}

	topo, err := s.topology.Snapshot(ctx)
	if err != nil {
		return domain.InvalidPath(target, err.Error()), "unavailable"
	}

	server, ok := s.cachedPosition()
	if !ok {
		if server, err = s.locate(topo); err != nil {
			return domain.InvalidPath(target, err.Error()), outcomeFor(err)
		}
	}

	res, err := s.resolver.Resolve(ctx, topo, target)
	if err != nil {
		return domain.InvalidPath(target, err.Error()), outcomeFor(err)
	}

	path := pathtrace.ComputePath(topo, server, res)
	if !path.IsValid {
		return path, "invalid"
	}
	grading.NewBottleneckCalculator().Apply(path)
	return path, "valid"
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}

// Analyze traces the target, grades the sample, stores the record and publishes it.
func (s *Service) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalysisRecord, error) {
	if err := validate.Struct(req); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "analysis.Analyze")
	defer span.End()

	path := s.ComputePath(ctx, req.Target)
	result := grading.GradeResult(path, req.FromMbps, req.ToMbps, req.Retransmits)

	if result.FromGrade != domain.GradeNone {
		telemetry.Grades.WithLabelValues("from", string(result.FromGrade)).Inc()
	}
	if result.ToGrade != domain.GradeNone {
		telemetry.Grades.WithLabelValues("to", string(result.ToGrade)).Inc()
	}

	record := domain.AnalysisRecord{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Target:      strings.TrimSpace(req.Target),
		Retransmits: req.Retransmits,
		Result:      result,
	}
	span.SetAttributes(
		attribute.String("analysis.id", record.ID),
		attribute.String("analysis.from_grade", string(result.FromGrade)),
		attribute.String("analysis.to_grade", string(result.ToGrade)),
	)

	if s.repo != nil {
		if err := s.repo.Save(ctx, record); err != nil {
			span.RecordError(err)
			return domain.AnalysisRecord{}, fmt.Errorf("save analysis: %w", err)
		}
	}

	s.mu.RLock()
	pub := s.publisher
	s.mu.RUnlock()
	if pub != nil {
		pub.PublishAnalysis(record)
	}

	s.logger.Info("Analysis completed",
		"id", record.ID, "target", record.Target,
		"from_grade", result.FromGrade, "to_grade", result.ToGrade, "valid", path.IsValid)
	return record, nil
}

// History lists stored analyses, optionally for one target.
func (s *Service) History(ctx context.Context, target string, limit int) ([]domain.AnalysisRecord, error) {
	if s.repo == nil {
		return []domain.AnalysisRecord{}, nil
	}
	if target = strings.TrimSpace(target); target != "" {
		return s.repo.ListByTarget(ctx, target, limit)
	}
	return s.repo.List(ctx, limit)
}

// Get returns one stored analysis.
func (s *Service) Get(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	if s.repo == nil {
		return domain.AnalysisRecord{}, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}
