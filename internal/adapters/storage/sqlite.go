package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// DefaultListLimit applies when a caller asks for a non-positive limit.
const DefaultListLimit = 50

// MaxListLimit caps a single history page.
const MaxListLimit = 500

// SQLiteAdapter implements ports.AnalysisRepository using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// AnalysisModel is the GORM model for graded analyses. The path, retransmit
// counters, insights and recommendations are stored as JSON text.
type AnalysisModel struct {
	ID         string    `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"index"`
	Target     string    `gorm:"index"`
	TargetType string
	IsValid    bool

	FromMbps       float64
	ToMbps         float64
	FromEfficiency float64
	ToEfficiency   float64
	FromGrade      string
	ToGrade        string
	FromLossPct    float64
	ToLossPct      float64

	TheoreticalMaxMbps int
	RealisticMaxMbps   int
	Bottleneck         string

	Retransmits     string `gorm:"type:text"`
	Path            string `gorm:"type:text"`
	Insights        string `gorm:"type:text"`
	Recommendations string `gorm:"type:text"`
}

// NewSQLiteAdapter opens the database, installs the tracing plugin and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, &DatabaseError{Op: "install tracing", Err: err}
	}

	// SQLite allows one writer; ":memory:" databases are per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&AnalysisModel{}); err != nil {
		return nil, &DatabaseError{Op: "migrate", Err: err}
	}
	db.Exec("CREATE INDEX IF NOT EXISTS idx_analyses_target_created ON analysis_models(target, created_at)")

	return &SQLiteAdapter{db: db}, nil
}

// Save inserts or replaces a record.
func (a *SQLiteAdapter) Save(ctx context.Context, record domain.AnalysisRecord) error {
	if record.ID == "" {
		return &DatabaseError{Op: "save", Err: errors.New("record id is empty")}
	}
	model, err := toModel(record)
	if err != nil {
		return &DatabaseError{Op: "encode", Err: err}
	}
	if err := a.db.WithContext(ctx).Save(&model).Error; err != nil {
		return &DatabaseError{Op: "save", Err: err}
	}
	return nil
}

// Get retrieves a record by id.
func (a *SQLiteAdapter) Get(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	var model AnalysisModel
	if err := a.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AnalysisRecord{}, fmt.Errorf("analysis %q: %w", id, domain.ErrNotFound)
		}
		return domain.AnalysisRecord{}, &DatabaseError{Op: "get", Err: err}
	}
	return toDomain(model)
}

// List returns the newest records first.
func (a *SQLiteAdapter) List(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	return a.find(a.db.WithContext(ctx), limit)
}

// ListByTarget returns the newest records for one target first.
func (a *SQLiteAdapter) ListByTarget(ctx context.Context, target string, limit int) ([]domain.AnalysisRecord, error) {
	return a.find(a.db.WithContext(ctx).Where("target = ?", target), limit)
}

func (a *SQLiteAdapter) find(query *gorm.DB, limit int) ([]domain.AnalysisRecord, error) {
	var models []AnalysisModel
	if err := query.Order("created_at desc").Limit(clampLimit(limit)).Find(&models).Error; err != nil {
		return nil, &DatabaseError{Op: "list", Err: err}
	}

	records := make([]domain.AnalysisRecord, 0, len(models))
	for _, m := range models {
		r, err := toDomain(m)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// DatabaseError wraps database-specific errors with the failed operation.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s failed: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// Ensure interface compliance
var _ ports.AnalysisRepository = (*SQLiteAdapter)(nil)
