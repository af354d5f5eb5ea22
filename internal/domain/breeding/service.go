package breeding

import (
	"context"
	"time"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/domain"
	"rebanho/internal/domain/herd"
	"rebanho/internal/domain/reports"
	"rebanho/pkg/logger"
)

// Repository persists transfers and schedules.
type Repository interface {
	TransferExists(ctx context.Context, animalID int64, transferDate time.Time) (bool, error)
	CreateTransfer(ctx context.Context, t *EmbryoTransfer) error
	ScheduleExists(ctx context.Context, animalID int64, inseminationDate time.Time) (bool, error)
	CreateSchedule(ctx context.Context, s *DiagnosisSchedule) error
	DueSchedules(ctx context.Context, upTo time.Time) ([]DiagnosisSchedule, error)
	UpdateScheduleStatus(ctx context.Context, scheduleID id.ID, status string) error
}

// MasterUpserter is the slice of the herd service breeding needs.
type MasterUpserter interface {
	Upsert(ctx context.Context, key herd.Key, attrs herd.Attributes) (*herd.Animal, error)
}

// Config carries the breeding policy knobs.
type Config struct {
	// DGOffsetDays is how many days after the recipients arrive the
	// pregnancy diagnosis is due.
	DGOffsetDays int
	// DefaultSeries is used when an earring tag has no series prefix.
	DefaultSeries string
}

type Service struct {
	repo      Repository
	masters   MasterUpserter
	worklists reports.WorklistGenerator
	cfg       Config
}

func NewService(repo Repository, masters MasterUpserter, worklists reports.WorklistGenerator, cfg Config) *Service {
	if cfg.DGOffsetDays <= 0 {
		cfg.DGOffsetDays = 15
	}
	if cfg.DefaultSeries == "" {
		cfg.DefaultSeries = "RPT"
	}
	return &Service{repo: repo, masters: masters, worklists: worklists, cfg: cfg}
}

// ScheduleIntake processes a recipient batch: upserts every animal into the
// herd master and, when the transfer date is known, records the transfers
// and books the pregnancy diagnosis. The worklist print is queued on the
// hook collector so it only runs after the document commits.
func (s *Service) ScheduleIntake(ctx context.Context, intake Intake, hooks *domain.PostCommit) (*Outcome, error) {
	if len(intake.Items) == 0 {
		return nil, apperror.NewValidation("recipient intake needs at least one animal")
	}

	outcome := &Outcome{}
	// The diagnosis date derives from the arrival, not the transfer; the
	// transfer date only gates whether transfer and diagnosis records are
	// created at all.
	diagnosisDate := intake.ArrivalDate.AddDate(0, 0, s.cfg.DGOffsetDays)
	outcome.DiagnosisDate = &diagnosisDate

	worklist := reports.WorklistInput{
		DocumentNumber: intake.DocumentNumber,
		RecipientBatch: intake.RecipientBatch,
		ArrivalDate:    intake.ArrivalDate,
	}

	for _, item := range intake.Items {
		key := herd.ParseEarringTag(item.EarringTag, s.cfg.DefaultSeries)
		arrival := intake.ArrivalDate
		animal, err := s.masters.Upsert(ctx, key, herd.Attributes{
			Sex:           item.Sex,
			Breed:         item.Breed,
			AgeBracket:    item.AgeBracket,
			Weight:        item.Weight,
			ArrivalDate:   &arrival,
			DiagnosisDate: &diagnosisDate,
		})
		if err != nil {
			return nil, err
		}
		outcome.AnimalsUpserted++

		if intake.TransferDate == nil {
			continue
		}
		created, err := s.recordTransfer(ctx, animal.ID, *intake.TransferDate, intake.DocumentNumber)
		if err != nil {
			return nil, err
		}
		if created {
			outcome.TransfersCreated++
		}
		booked, err := s.bookDiagnosis(ctx, animal.ID, *intake.TransferDate, diagnosisDate, intake.DocumentNumber)
		if err != nil {
			return nil, err
		}
		if booked {
			outcome.SchedulesCreated++
		}
		worklist.Items = append(worklist.Items, reports.WorklistItem{
			EarringTag: key.Tag(),
			Sex:        item.Sex,
			Breed:      item.Breed,
			AgeBracket: item.AgeBracket,
		})
	}

	if intake.TransferDate == nil {
		logger.Info(ctx, "intake without transfer date, masters updated only",
			"document_number", intake.DocumentNumber,
			"animals", outcome.AnimalsUpserted)
		return outcome, nil
	}

	// The printed worklist is organized by batch; an intake without a batch
	// identifier still schedules everything but has nothing to print.
	if s.worklists != nil && intake.RecipientBatch != "" && len(worklist.Items) > 0 {
		worklist.DiagnosisDate = diagnosisDate
		outcome.WorklistRequested = true
		hooks.Add("diagnosis-worklist", func(ctx context.Context) error {
			path, err := s.worklists.Generate(ctx, worklist)
			if err != nil {
				return err
			}
			logger.Info(ctx, "diagnosis worklist generated",
				"document_number", worklist.DocumentNumber,
				"artifact", path)
			return nil
		})
	}

	logger.Info(ctx, "recipient intake scheduled",
		"document_number", intake.DocumentNumber,
		"animals", outcome.AnimalsUpserted,
		"transfers", outcome.TransfersCreated,
		"schedules", outcome.SchedulesCreated)
	return outcome, nil
}

func (s *Service) recordTransfer(ctx context.Context, animalID int64, date time.Time, documentNumber string) (bool, error) {
	exists, err := s.repo.TransferExists(ctx, animalID, date)
	if err != nil || exists {
		return false, err
	}
	return true, s.repo.CreateTransfer(ctx, &EmbryoTransfer{
		ID:             id.New(),
		AnimalID:       animalID,
		TransferDate:   date,
		DocumentNumber: documentNumber,
	})
}

func (s *Service) bookDiagnosis(ctx context.Context, animalID int64, insemination, due time.Time, documentNumber string) (bool, error) {
	exists, err := s.repo.ScheduleExists(ctx, animalID, insemination)
	if err != nil || exists {
		return false, err
	}
	return true, s.repo.CreateSchedule(ctx, &DiagnosisSchedule{
		ID:               id.New(),
		AnimalID:         animalID,
		InseminationDate: insemination,
		ScheduledFor:     due,
		Status:           StatusPending,
		DocumentNumber:   documentNumber,
	})
}

// MarkResult records the vet's verdict on a pending diagnosis.
func (s *Service) MarkResult(ctx context.Context, scheduleID id.ID, status string) error {
	if status != StatusConfirmed && status != StatusEmpty {
		return apperror.NewValidation("diagnosis result must be confirmed or empty")
	}
	return s.repo.UpdateScheduleStatus(ctx, scheduleID, status)
}

// DueSchedules lists pending diagnoses due up to the given day. The worker
// uses it to nag the vet.
func (s *Service) DueSchedules(ctx context.Context, upTo time.Time) ([]DiagnosisSchedule, error) {
	return s.repo.DueSchedules(ctx, upTo)
}
