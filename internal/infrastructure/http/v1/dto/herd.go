package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/domain/herd"
)

// AnimalResponse is one head of the herd master.
type AnimalResponse struct {
	ID            int64            `json:"id"`
	EarringTag    string           `json:"earringTag"`
	Series        string           `json:"series"`
	Registration  string           `json:"registration"`
	Sex           string           `json:"sex,omitempty"`
	Breed         string           `json:"breed,omitempty"`
	AgeBracket    string           `json:"ageBracket,omitempty"`
	Weight        *decimal.Decimal `json:"weight,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	ArrivalDate   *time.Time       `json:"arrivalDate,omitempty"`
	DiagnosisDate *time.Time       `json:"diagnosisDate,omitempty"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func FromAnimal(a *herd.Animal) AnimalResponse {
	return AnimalResponse{
		ID:            a.ID,
		EarringTag:    herd.Key{Series: a.Series, Registration: a.Registration}.Tag(),
		Series:        a.Series,
		Registration:  a.Registration,
		Sex:           a.Sex,
		Breed:         a.Breed,
		AgeBracket:    a.AgeBracket,
		Weight:        a.Weight,
		Notes:         a.Notes,
		ArrivalDate:   a.ArrivalDate,
		DiagnosisDate: a.DiagnosisDate,
		UpdatedAt:     a.UpdatedAt,
	}
}

func FromAnimals(animals []herd.Animal) []AnimalResponse {
	out := make([]AnimalResponse, 0, len(animals))
	for i := range animals {
		out = append(out, FromAnimal(&animals[i]))
	}
	return out
}

// ListAnimalsRequest filters the herd listing.
type ListAnimalsRequest struct {
	PageRequest
	Series string `form:"series"`
}
