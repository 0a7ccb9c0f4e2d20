package engine

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"noctisium/internal/achievement"
	"noctisium/internal/progression"
	"noctisium/internal/storage"
)

// Service wires the pure analytics and progression modules to the
// record store. All methods are safe for concurrent use; the unlock
// protocol is additionally serialized per user.
type Service struct {
	db         *sql.DB
	kpis       *storage.KPIRepo
	records    *storage.RecordRepo
	characters *storage.CharacterRepo
	unlocks    *storage.UnlockRepo

	registry  *achievement.Registry
	evaluator *achievement.Evaluator
	cfg       progression.Config

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex

	now func() time.Time
}

// NewService builds a service over an opened database, the achievement
// registry, and a validated progression config.
func NewService(db *sql.DB, registry *achievement.Registry, cfg progression.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("progression config: %w", err)
	}
	return &Service{
		db:         db,
		kpis:       storage.NewKPIRepo(db),
		records:    storage.NewRecordRepo(db),
		characters: storage.NewCharacterRepo(db),
		unlocks:    storage.NewUnlockRepo(db),
		registry:   registry,
		evaluator:  achievement.NewEvaluator(registry, achievement.BuiltinPredicates()),
		cfg:        cfg,
		userLocks:  map[string]*sync.Mutex{},
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) KPIRepo() *storage.KPIRepo             { return s.kpis }
func (s *Service) RecordRepo() *storage.RecordRepo       { return s.records }
func (s *Service) CharacterRepo() *storage.CharacterRepo { return s.characters }
func (s *Service) UnlockRepo() *storage.UnlockRepo       { return s.unlocks }
func (s *Service) Registry() *achievement.Registry       { return s.registry }
func (s *Service) Config() progression.Config            { return s.cfg }

// userLock returns the per-user mutex serializing the unlock protocol.
func (s *Service) userLock(user string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[user]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[user] = lock
	}
	return lock
}
