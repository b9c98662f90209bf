package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PhaseGate/app/models"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/phases"
)

// CompletionRecorder is notified after a phase completion has been stored.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, phaseID string) error
}

// Service loads snapshots and records phase completions. It holds no
// per-user state and is safe for concurrent use.
type Service struct {
	repo     Repository
	resolver *Resolver
	catalog  *phases.Catalog
	recorder CompletionRecorder
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog replaces the default phase catalog.
func WithCatalog(c *phases.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRecorder installs a completion recorder.
func WithRecorder(r CompletionRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger overrides the process-wide logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now for completed_at and subscription start.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a progress service from an injected repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		catalog: phases.Default,
		log:     logger.L(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = &Resolver{repo: repo, now: s.now}
	return s
}

// NewServiceFromDB creates a progress service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, opts ...Option) *Service {
	return NewService(NewRepository(db), opts...)
}

func (s *Service) Catalog() *phases.Catalog { return s.catalog }

func (s *Service) Resolver() *Resolver { return s.resolver }

// Load reads the user's progress, subscription and admin flag. A nil user
// yields the anonymous snapshot. Read failures never prevent a snapshot:
// the failing part falls back to its most restrictive value (no progress,
// free tier, not admin) and the failures are returned joined, each
// matching ErrPersistence.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return Anonymous(s.catalog), nil
	}

	var errs []error

	rows, err := s.repo.GetProgressRows(ctx, userID)
	if err != nil {
		s.log.Warn("loading progress rows failed", zap.String("user_id", userID.String()), zap.Error(err))
		errs = append(errs, persistenceErr("get progress rows", err))
		rows = nil
	}

	sub, err := s.resolver.Subscription(ctx, userID)
	if err != nil {
		s.log.Warn("resolving subscription failed", zap.String("user_id", userID.String()), zap.Error(err))
		errs = append(errs, err)
		sub = nil
	}

	isAdmin, err := s.resolver.IsAdmin(ctx, userID)
	if err != nil {
		s.log.Warn("resolving admin role failed", zap.String("user_id", userID.String()), zap.Error(err))
		errs = append(errs, err)
		isAdmin = false
	}

	return NewSnapshot(s.catalog, userID, rows, sub, isAdmin, s.now()), errors.Join(errs...)
}

// MarkPhaseComplete upserts the (user, phase) row as completed with the
// given payload and returns a freshly loaded snapshot. The write is a single
// row upsert, so a failure leaves the previous row untouched.
func (s *Service) MarkPhaseComplete(ctx context.Context, userID uuid.UUID, phaseID string, progressData any) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if _, ok := s.catalog.Lookup(phaseID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPhase, phaseID)
	}

	payload, err := encodeProgressData(progressData)
	if err != nil {
		return nil, err
	}

	now := s.now()
	row := &models.UserProgress{
		UserID:       userID,
		Phase:        phaseID,
		Completed:    true,
		CompletedAt:  &now,
		ProgressData: payload,
	}
	if err := s.repo.UpsertProgressRow(ctx, row); err != nil {
		s.log.Error("marking phase complete failed",
			zap.String("user_id", userID.String()),
			zap.String("phase", phaseID),
			zap.Error(err),
		)
		return nil, persistenceErr("upsert progress row", err)
	}

	s.log.Info("phase completed", zap.String("user_id", userID.String()), zap.String("phase", phaseID))

	if s.recorder != nil {
		if err := s.recorder.RecordCompletion(ctx, phaseID); err != nil {
			s.log.Warn("recording completion statistic failed", zap.String("phase", phaseID), zap.Error(err))
		}
	}

	snap, err := s.Load(ctx, userID)
	if err != nil {
		// The write went through; a degraded reload is still returned.
		s.log.Warn("reload after completion degraded", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return snap, nil
}

func encodeProgressData(data any) (datatypes.JSON, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case datatypes.JSON:
		if len(v) == 0 {
			return nil, nil
		}
		if !json.Valid(v) {
			return nil, ErrInvalidProgressData
		}
		return v, nil
	case json.RawMessage:
		if len(v) == 0 {
			return nil, nil
		}
		if !json.Valid(v) {
			return nil, ErrInvalidProgressData
		}
		return datatypes.JSON(v), nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgressData, err)
	}
	return datatypes.JSON(b), nil
}
