package herd

import (
	"context"

	"rebanho/internal/core/apperror"
	"rebanho/pkg/logger"
)

// Repository persists the herd master. Insert is responsible for surviving
// a drifted primary-key sequence: the legacy table received manual loads
// that left the serial sequence behind max(id).
type Repository interface {
	GetByKey(ctx context.Context, key Key) (*Animal, error)
	GetByID(ctx context.Context, animalID int64) (*Animal, error)
	Insert(ctx context.Context, animal *Animal) error
	UpdateMerge(ctx context.Context, animalID int64, attrs Attributes) error
	List(ctx context.Context, series string, limit, offset int) ([]Animal, int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert creates the animal if the earring key is unknown, otherwise merges
// the given attributes into the existing row. Merging is coalescing: only
// populated fields overwrite, so repeated documents enrich the master
// instead of erasing it.
func (s *Service) Upsert(ctx context.Context, key Key, attrs Attributes) (*Animal, error) {
	if key.Registration == "" {
		return nil, apperror.NewValidation("earring registration is required")
	}

	existing, err := s.repo.GetByKey(ctx, key)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		if err := s.repo.UpdateMerge(ctx, existing.ID, attrs); err != nil {
			return nil, err
		}
		logger.Debug(ctx, "animal master merged", "earring", key.Tag(), "animal_id", existing.ID)
		return s.repo.GetByKey(ctx, key)
	}

	animal := &Animal{
		Series:        key.Series,
		Registration:  key.Registration,
		Sex:           attrs.Sex,
		Breed:         attrs.Breed,
		AgeBracket:    attrs.AgeBracket,
		Notes:         attrs.Notes,
		Weight:        attrs.Weight,
		ArrivalDate:   attrs.ArrivalDate,
		DiagnosisDate: attrs.DiagnosisDate,
	}
	if err := s.repo.Insert(ctx, animal); err != nil {
		return nil, err
	}
	logger.Info(ctx, "animal master created", "earring", key.Tag(), "animal_id", animal.ID)
	return animal, nil
}

// Get returns one animal by its internal id.
func (s *Service) Get(ctx context.Context, animalID int64) (*Animal, error) {
	return s.repo.GetByID(ctx, animalID)
}

// List pages through the herd, optionally filtered by series.
func (s *Service) List(ctx context.Context, series string, limit, offset int) ([]Animal, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, series, limit, offset)
}
