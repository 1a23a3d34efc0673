// Package workers manages worker profiles: the bookable identities with a
// daily working window. Profiles are upserted in place, never deleted.
package workers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"maidbook/internal/models"
	"maidbook/internal/store"
)

// ErrUnknownWorker means no profile matches the handle.
var ErrUnknownWorker = errors.New("workers: profile not found")

// Filters narrows a worker listing. Both are case-insensitive substring
// matches; empty means no constraint.
type Filters struct {
	City  string
	Skill string
}

type Service struct {
	tables          store.Tables
	conflictRetries int
	logger          zerolog.Logger
}

func NewService(s store.Store, conflictRetries int, logger *zerolog.Logger) *Service {
	if conflictRetries <= 0 {
		conflictRetries = 3
	}
	return &Service{
		tables:          store.Tables{Store: s},
		conflictRetries: conflictRetries,
		logger:          logger.With().Str("component", "workers").Logger(),
	}
}

// Upsert saves a profile, replacing any existing one for the same handle.
func (s *Service) Upsert(ctx context.Context, profile models.WorkerProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		workers, token, err := s.tables.Workers(ctx)
		if err != nil {
			return fmt.Errorf("load workers: %w", err)
		}

		replaced := false
		for i := range workers {
			if models.SameHandle(workers[i].Username, profile.Username) {
				workers[i] = profile
				replaced = true
				break
			}
		}
		if !replaced {
			workers = append(workers, profile)
		}

		_, err = s.tables.SaveWorkers(ctx, workers, token)
		if err == nil {
			s.logger.Info().Str("worker", profile.Username).Bool("created", !replaced).Msg("profile saved")
			return nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("persist worker: %w", err)
		}
		if attempt >= s.conflictRetries {
			return fmt.Errorf("profile save contended: %w", store.ErrConflict)
		}
	}
}

// Get finds a profile by handle.
func (s *Service) Get(ctx context.Context, username string) (*models.WorkerProfile, error) {
	workers, _, err := s.tables.Workers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}
	for i := range workers {
		if models.SameHandle(workers[i].Username, username) {
			return &workers[i], nil
		}
	}
	return nil, ErrUnknownWorker
}

// List returns profiles matching the filters, in collection order.
func (s *Service) List(ctx context.Context, filters Filters) ([]models.WorkerProfile, error) {
	workers, _, err := s.tables.Workers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}

	city := strings.ToLower(strings.TrimSpace(filters.City))
	skill := strings.ToLower(strings.TrimSpace(filters.Skill))

	var matched []models.WorkerProfile
	for _, w := range workers {
		if city != "" && !strings.Contains(strings.ToLower(w.City), city) {
			continue
		}
		if skill != "" && !hasSkill(w.Skills, skill) {
			continue
		}
		matched = append(matched, w)
	}
	return matched, nil
}

func hasSkill(skills []string, want string) bool {
	for _, s := range skills {
		if strings.Contains(strings.ToLower(s), want) {
			return true
		}
	}
	return false
}
