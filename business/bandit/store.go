package bandit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"myArtMarket/pkg/logger"
)

// ---- Repository interfaces ----

// ModelRepository is the durable per-user store. LoadModel returns
// (nil, nil) when the user has nothing stored.
type ModelRepository interface {
	LoadModel(ctx context.Context, userID uint) (*UserModel, error)
	SaveModel(ctx context.Context, userID uint, m *UserModel) error
}

// ModelCache is the short-lived fast path in front of the durable store.
// GetModel returns (nil, nil) on a miss.
type ModelCache interface {
	GetModel(ctx context.Context, userID uint) (*UserModel, error)
	SetModel(ctx context.Context, userID uint, m *UserModel) error
}

// ---- Pending write state ----

// WriteState tracks a resident model against its durable copy:
// Clean -> Dirty (timer armed) -> Flushing -> Clean.
type WriteState int

const (
	WriteClean WriteState = iota
	WriteDirty
	WriteFlushing
)

func (s WriteState) String() string {
	switch s {
	case WriteClean:
		return "clean"
	case WriteDirty:
		return "dirty"
	case WriteFlushing:
		return "flushing"
	default:
		return fmt.Sprintf("WriteState(%d)", int(s))
	}
}

var errFlushInFlight = errors.New("flush already in flight")

type residentModel struct {
	model *UserModel
	state WriteState
	// set when an update lands while a write is in flight
	redirty    bool
	timer      Timer
	timerGen   uint64
	flushDone  chan struct{}
	lastAccess time.Time
}

// ---- Store ----

// ModelStore owns the per-user models of one process. Reads are served from
// memory when possible; updates are applied in memory, mirrored to the cache
// right away and written to the durable store after a quiet period.
type ModelStore struct {
	mu     sync.Mutex
	models map[uint]*residentModel
	closed bool

	durable ModelRepository
	cache   ModelCache
	clock   Clock
	cfg     Config
}

type StoreOption func(*ModelStore)

func WithCache(c ModelCache) StoreOption {
	return func(s *ModelStore) {
		s.cache = c
	}
}

func WithClock(c Clock) StoreOption {
	return func(s *ModelStore) {
		s.clock = c
	}
}

// NewModelStore creates a store. durable may be nil, in which case models
// live only in memory and the cache.
func NewModelStore(durable ModelRepository, cfg Config, opts ...StoreOption) *ModelStore {
	if cfg.PersistDebounce <= 0 {
		cfg.PersistDebounce = defaultPersistDebounce
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	s := &ModelStore{
		models:  make(map[uint]*residentModel),
		durable: durable,
		clock:   systemClock{},
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a private copy of the user's model. It never fails: a user
// with no usable history gets the identity model.
func (s *ModelStore) Get(ctx context.Context, userID uint) *UserModel {
	r := s.resident(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return r.model.Clone()
}

// State reports the pending-write state of a resident model.
func (s *ModelStore) State(userID uint) WriteState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.models[userID]; ok {
		return r.state
	}
	return WriteClean
}

// Update applies one ridge-regression observation for the user.
func (s *ModelStore) Update(ctx context.Context, userID uint, x FeatureVector, reward float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return fmt.Errorf("invalid reward: %v", reward)
	}
	s.mutate(ctx, userID, func(m *UserModel, now time.Time) *UserModel {
		m.Update(x, reward, now)
		return m
	})
	return nil
}

// Reset replaces the user's model with the identity model. The reset is
// persisted like any other update.
func (s *ModelStore) Reset(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	s.mutate(ctx, userID, func(_ *UserModel, now time.Time) *UserModel {
		m := NewUserModel()
		m.UpdatedAt = now
		return m
	})
	return nil
}

func (s *ModelStore) mutate(ctx context.Context, userID uint, fn func(m *UserModel, now time.Time) *UserModel) {
	r := s.resident(ctx, userID)

	s.mu.Lock()
	// the entry may have been evicted between load and lock
	if cur, ok := s.models[userID]; ok {
		r = cur
	} else {
		s.models[userID] = r
	}
	now := s.clock.Now()
	r.model = fn(r.model, now)
	r.lastAccess = now
	if r.state == WriteFlushing {
		r.redirty = true
	} else {
		r.state = WriteDirty
	}
	s.armLocked(userID, r)
	snapshot := r.model.Clone()
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SetModel(ctx, userID, snapshot); err != nil {
			logger.Warn("bandit_model_cache_set_failed",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"error", err,
			)
		}
	}
}

// Flush writes every dirty model now, waiting for writes already in flight.
func (s *ModelStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]uint, 0, len(s.models))
	for id, r := range s.models {
		if r.state != WriteClean {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.flushNow(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops all timers and flushes what is left.
func (s *ModelStore) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for _, r := range s.models {
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
	}
	s.mu.Unlock()
	return s.Flush(ctx)
}

// ---- Loading ----

func (s *ModelStore) resident(ctx context.Context, userID uint) *residentModel {
	s.mu.Lock()
	if r, ok := s.models[userID]; ok {
		r.lastAccess = s.clock.Now()
		s.mu.Unlock()
		ModelLoadsTotal.WithLabelValues("memory").Inc()
		return r
	}
	s.mu.Unlock()

	m, source := s.load(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if r, ok := s.models[userID]; ok {
		// another caller loaded it first
		r.lastAccess = now
		return r
	}
	r := &residentModel{model: m, lastAccess: now}
	s.models[userID] = r
	s.evictLocked(userID)
	ResidentModels.Set(float64(len(s.models)))
	ModelLoadsTotal.WithLabelValues(source).Inc()
	return r
}

func (s *ModelStore) load(ctx context.Context, userID uint) (*UserModel, string) {
	tid := TraceIDFromContext(ctx)

	if s.cache != nil {
		m, err := s.cache.GetModel(ctx, userID)
		switch {
		case err != nil:
			logger.Warn("bandit_model_cache_get_failed", "trace_id", tid, "user_id", userID, "error", err)
		case m != nil:
			verr := m.validate()
			if verr == nil {
				return m, "cache"
			}
			logger.Warn("bandit_model_cache_corrupt", "trace_id", tid, "user_id", userID, "error", verr)
		}
	}

	if s.durable != nil {
		m, err := s.durable.LoadModel(ctx, userID)
		switch {
		case err != nil:
			logger.Error("bandit_model_load_failed", "trace_id", tid, "user_id", userID, "error", err)
		case m != nil:
			verr := m.validate()
			if verr != nil {
				logger.Error("bandit_model_corrupt", "trace_id", tid, "user_id", userID, "error", verr)
				break
			}
			if s.cache != nil {
				if err := s.cache.SetModel(ctx, userID, m.Clone()); err != nil {
					logger.Warn("bandit_model_cache_set_failed", "trace_id", tid, "user_id", userID, "error", err)
				}
			}
			return m, "durable"
		}
	}

	return NewUserModel(), "fresh"
}

// ---- Debounced persistence ----

// armLocked (re)starts the quiet-period timer. Callers hold s.mu.
func (s *ModelStore) armLocked(userID uint, r *residentModel) {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
	if s.closed {
		return
	}
	gen := r.timerGen
	r.timer = s.clock.AfterFunc(s.cfg.PersistDebounce, func() {
		s.onTimer(userID, gen)
	})
}

func (s *ModelStore) onTimer(userID uint, gen uint64) {
	s.mu.Lock()
	r, ok := s.models[userID]
	if !ok || r.timerGen != gen {
		// superseded by a newer update
		s.mu.Unlock()
		return
	}
	r.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()
	if err := s.flushUser(ctx, userID); errors.Is(err, errFlushInFlight) {
		s.mu.Lock()
		if r, ok := s.models[userID]; ok && r.timer == nil {
			s.armLocked(userID, r)
		}
		s.mu.Unlock()
	}
}

func (s *ModelStore) flushNow(ctx context.Context, userID uint) error {
	for {
		s.mu.Lock()
		r, ok := s.models[userID]
		if !ok || r.state == WriteClean {
			s.mu.Unlock()
			return nil
		}
		done := r.flushDone
		s.mu.Unlock()

		if done != nil {
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := s.flushUser(ctx, userID)
		if errors.Is(err, errFlushInFlight) {
			continue
		}
		return err
	}
}

// flushUser writes the latest state of one dirty model. Only one write per
// user is ever in flight; a failed write leaves the model dirty and retries
// after the next quiet period.
func (s *ModelStore) flushUser(ctx context.Context, userID uint) error {
	s.mu.Lock()
	r, ok := s.models[userID]
	if !ok || r.state == WriteClean {
		s.mu.Unlock()
		return nil
	}
	if r.state == WriteFlushing {
		s.mu.Unlock()
		return errFlushInFlight
	}

	snapshot := r.model.Clone()
	r.state = WriteFlushing
	r.redirty = false
	done := make(chan struct{})
	r.flushDone = done
	if r.timer != nil {
		// this write already carries the latest state
		r.timer.Stop()
		r.timer = nil
		r.timerGen++
	}
	s.mu.Unlock()

	var err error
	if s.durable != nil {
		err = s.durable.SaveModel(ctx, userID, snapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	close(done)
	r.flushDone = nil

	if err != nil {
		r.state = WriteDirty
		if r.timer == nil {
			s.armLocked(userID, r)
		}
		ModelFlushesTotal.WithLabelValues("error").Inc()
		logger.Error("bandit_model_flush_failed", "user_id", userID, "error", err)
		return fmt.Errorf("save model for user %d: %w", userID, err)
	}

	ModelFlushesTotal.WithLabelValues("ok").Inc()
	if r.redirty {
		r.redirty = false
		r.state = WriteDirty
		if r.timer == nil {
			s.armLocked(userID, r)
		}
	} else {
		r.state = WriteClean
	}
	return nil
}
