package herd

import (
	"context"
	"testing"
	"time"

	"rebanho/internal/core/apperror"
)

type fakeRepo struct {
	animals map[Key]*Animal
	nextID  int64
	merges  []Attributes
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{animals: make(map[Key]*Animal)}
}

func (f *fakeRepo) GetByKey(_ context.Context, key Key) (*Animal, error) {
	if a, ok := f.animals[key]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, apperror.NewNotFound("animal", key.Tag())
}

func (f *fakeRepo) GetByID(_ context.Context, animalID int64) (*Animal, error) {
	for _, a := range f.animals {
		if a.ID == animalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("animal", animalID)
}

func (f *fakeRepo) Insert(_ context.Context, animal *Animal) error {
	f.nextID++
	animal.ID = f.nextID
	cp := *animal
	f.animals[Key{Series: animal.Series, Registration: animal.Registration}] = &cp
	return nil
}

// UpdateMerge mimics the SQL coalesce: blanks and nils keep stored values.
func (f *fakeRepo) UpdateMerge(_ context.Context, animalID int64, attrs Attributes) error {
	f.merges = append(f.merges, attrs)
	for _, a := range f.animals {
		if a.ID != animalID {
			continue
		}
		if attrs.Sex != "" {
			a.Sex = attrs.Sex
		}
		if attrs.Breed != "" {
			a.Breed = attrs.Breed
		}
		if attrs.AgeBracket != "" {
			a.AgeBracket = attrs.AgeBracket
		}
		if attrs.Notes != "" {
			a.Notes = attrs.Notes
		}
		if attrs.Weight != nil {
			a.Weight = attrs.Weight
		}
		if attrs.ArrivalDate != nil {
			a.ArrivalDate = attrs.ArrivalDate
		}
		if attrs.DiagnosisDate != nil {
			a.DiagnosisDate = attrs.DiagnosisDate
		}
		return nil
	}
	return apperror.NewNotFound("animal", animalID)
}

func (f *fakeRepo) List(_ context.Context, _ string, _, _ int) ([]Animal, int64, error) {
	out := make([]Animal, 0, len(f.animals))
	for _, a := range f.animals {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func TestUpsertCreates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	animal, err := svc.Upsert(ctx, Key{Series: "SER", Registration: "123"}, Attributes{Sex: "F", Breed: "Nelore"})
	if err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}
	if animal.ID == 0 {
		t.Error("new animal must get an id")
	}
	if animal.Breed != "Nelore" {
		t.Errorf("Breed = %q, want Nelore", animal.Breed)
	}
}

func TestUpsertMergesWithoutClobbering(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()
	key := Key{Series: "SER", Registration: "123"}

	if _, err := svc.Upsert(ctx, key, Attributes{Sex: "F", Breed: "Nelore"}); err != nil {
		t.Fatalf("first Upsert() error: %v", err)
	}

	// Second document knows the arrival date but not the breed.
	arrival := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	animal, err := svc.Upsert(ctx, key, Attributes{ArrivalDate: &arrival})
	if err != nil {
		t.Fatalf("second Upsert() error: %v", err)
	}

	if animal.Breed != "Nelore" {
		t.Errorf("Breed = %q, blank attribute must not clobber", animal.Breed)
	}
	if animal.ArrivalDate == nil || !animal.ArrivalDate.Equal(arrival) {
		t.Errorf("ArrivalDate = %v, want %v", animal.ArrivalDate, arrival)
	}
	if len(repo.merges) != 1 {
		t.Errorf("merge calls = %d, want 1", len(repo.merges))
	}
}

func TestUpsertRequiresRegistration(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Upsert(context.Background(), Key{Series: "SER"}, Attributes{})
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("Upsert() without registration = %v, want VALIDATION_ERROR", err)
	}
}
