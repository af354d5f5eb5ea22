package fiscal

import (
	"context"
	"time"

	"rebanho/internal/core/apperror"
	appctx "rebanho/internal/core/context"
	"rebanho/internal/core/id"
	"rebanho/internal/core/tx"
	"rebanho/internal/core/types"
	"rebanho/internal/domain"
	"rebanho/internal/domain/audit"
	"rebanho/internal/domain/breeding"
	"rebanho/internal/domain/herd"
	"rebanho/internal/domain/ledger"
	"rebanho/internal/domain/semen"
	"rebanho/pkg/logger"
)

// Repository persists documents and their lines.
type Repository interface {
	Create(ctx context.Context, doc *NotaFiscal) error
	Update(ctx context.Context, doc *NotaFiscal) error
	GetByID(ctx context.Context, docID id.ID) (*NotaFiscal, error)
	GetByNumber(ctx context.Context, number string) (*NotaFiscal, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	SaveItems(ctx context.Context, docID id.ID, items []LineItem) error
	GetItems(ctx context.Context, docID id.ID) ([]LineItem, error)
	List(ctx context.Context, filter ListFilter) ([]NotaFiscal, int64, error)
}

// ListFilter narrows document listings.
type ListFilter struct {
	Direction types.Direction
	Kind      types.ProductKind
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MasterUpserter maintains the herd master.
type MasterUpserter interface {
	Upsert(ctx context.Context, key herd.Key, attrs herd.Attributes) (*herd.Animal, error)
}

// InventoryReplenisher keeps the semen inventory in step with a document:
// the lots keyed to the document number are replaced by the given inputs.
type InventoryReplenisher interface {
	ReplaceForDocument(ctx context.Context, documentNumber string, inputs []semen.ReplenishInput) ([]semen.Lot, error)
}

// IntakeScheduler runs the recipient-batch workflow.
type IntakeScheduler interface {
	ScheduleIntake(ctx context.Context, intake breeding.Intake, hooks *domain.PostCommit) (*breeding.Outcome, error)
}

// MovementPoster replaces a document's ledger movements.
type MovementPoster interface {
	ReplaceForDocument(ctx context.Context, documentNumber string, movements []ledger.Movement) error
}

// Config carries document-entry policy.
type Config struct {
	// DefaultSeries backs earring tags that come without a series prefix.
	DefaultSeries string
}

// Service orchestrates document entry. A create or update runs every side
// effect (valuation, masters, inventory, scheduling, posting) inside one
// transaction: either the whole document lands or none of it does.
type Service struct {
	repo       Repository
	txManager  tx.Manager
	masters    MasterUpserter
	inventory  InventoryReplenisher
	scheduler  IntakeScheduler
	classifier ledger.Classifier
	poster     MovementPoster
	auditSink  audit.Sink
	cfg        Config
}

func NewService(
	repo Repository,
	txManager tx.Manager,
	masters MasterUpserter,
	inventory InventoryReplenisher,
	scheduler IntakeScheduler,
	classifier ledger.Classifier,
	poster MovementPoster,
	auditSink audit.Sink,
	cfg Config,
) *Service {
	if cfg.DefaultSeries == "" {
		cfg.DefaultSeries = "RPT"
	}
	return &Service{
		repo:       repo,
		txManager:  txManager,
		masters:    masters,
		inventory:  inventory,
		scheduler:  scheduler,
		classifier: classifier,
		poster:     poster,
		auditSink:  auditSink,
		cfg:        cfg,
	}
}

// Create enters a new document. The external number must be unused; the
// stored total is always recomputed from the lines, whatever the caller
// sent.
func (s *Service) Create(ctx context.Context, doc *NotaFiscal) (*NotaFiscal, error) {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	decision, err := s.classify(ctx, doc)
	if err != nil {
		return nil, err
	}

	doc.ID = id.New()
	doc.Total = ComputeTotal(doc.Items)

	hooks := &domain.PostCommit{}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByNumber(ctx, doc.Number)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewDuplicateDocument(doc.Number)
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return err
		}
		return s.applySideEffects(ctx, doc, decision, hooks)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, hooks, audit.OpDocumentCreated, doc)
	logger.Info(ctx, "document created",
		"document_id", doc.ID,
		"number", doc.Number,
		"kind", string(doc.Kind),
		"total", doc.Total.StringFixed(2))
	return doc, nil
}

// Update replaces an existing document wholesale: header fields, all line
// items, and every derived side effect. The external number is immutable.
func (s *Service) Update(ctx context.Context, docID id.ID, doc *NotaFiscal) (*NotaFiscal, error) {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	decision, err := s.classify(ctx, doc)
	if err != nil {
		return nil, err
	}

	hooks := &domain.PostCommit{}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		if existing.Number != doc.Number {
			return apperror.NewValidation("document number cannot change on update").
				WithDetail("current", existing.Number).
				WithDetail("requested", doc.Number)
		}

		doc.ID = existing.ID
		doc.Version = existing.Version
		doc.CreatedAt = existing.CreatedAt
		doc.Total = ComputeTotal(doc.Items)

		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return err
		}
		return s.applySideEffects(ctx, doc, decision, hooks)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, hooks, audit.OpDocumentUpdated, doc)
	logger.Info(ctx, "document updated",
		"document_id", doc.ID,
		"number", doc.Number,
		"total", doc.Total.StringFixed(2))
	return doc, nil
}

// classify runs the ledger classifier and resolves the effective tag. A
// document matched by counterparty but missing a tag posts under the
// inferred tag; one that matches nothing stays out of the ledger but must
// still carry an explicit tag of its own.
func (s *Service) classify(ctx context.Context, doc *NotaFiscal) (ledger.Decision, error) {
	decision, err := s.classifier.Classify(ctx, doc.ClassifierInfo())
	if err != nil {
		return ledger.Decision{}, err
	}
	if decision.Relevant && doc.Tag == "" {
		doc.Tag = decision.Tag
	}
	if doc.Tag == "" {
		return ledger.Decision{}, apperror.
			NewValidation("classification tag is required and could not be inferred from the counterparty").
			WithDetail("counterpartyName", doc.CounterpartyName)
	}
	return decision, nil
}

// applySideEffects runs inside the document transaction.
func (s *Service) applySideEffects(ctx context.Context, doc *NotaFiscal, decision ledger.Decision, hooks *domain.PostCommit) error {
	if err := s.upsertMasters(ctx, doc); err != nil {
		return err
	}
	if err := s.replaceInventory(ctx, doc); err != nil {
		return err
	}
	if doc.IsRecipientIntake() {
		if intake := s.intakeFrom(doc); len(intake.Items) > 0 {
			if _, err := s.scheduler.ScheduleIntake(ctx, intake, hooks); err != nil {
				return err
			}
		}
	}
	movements := []ledger.Movement(nil)
	if decision.Relevant {
		movements = doc.BuildMovements(decision.Tag)
	}
	// Always replace, even with an empty set: an update may have turned a
	// relevant document into an irrelevant one.
	return s.poster.ReplaceForDocument(ctx, doc.Number, movements)
}

// upsertMasters pushes every individually tagged animal line into the herd
// master. Recipient intakes are skipped here: the scheduler upserts those
// with the arrival and diagnosis dates attached.
func (s *Service) upsertMasters(ctx context.Context, doc *NotaFiscal) error {
	if doc.IsRecipientIntake() {
		return nil
	}
	for i := range doc.Items {
		li := &doc.Items[i]
		if li.Kind != types.KindAnimal || li.EarringTag == "" {
			continue
		}
		key := herd.ParseEarringTag(li.EarringTag, s.cfg.DefaultSeries)
		attrs := herd.Attributes{
			Sex:        li.Sex,
			Breed:      li.Breed,
			AgeBracket: li.AgeBracket,
			Weight:     li.Weight,
		}
		if doc.Direction == types.DirectionInbound {
			arrival := doc.ArrivalDate
			attrs.ArrivalDate = &arrival
		}
		if _, err := s.masters.Upsert(ctx, key, attrs); err != nil {
			return err
		}
	}
	return nil
}

// replaceInventory mirrors the ledger's replace semantics for semen lots:
// the document's current inbound semen lines define the whole lot set.
// For an outbound or semen-free document the set is empty, which clears
// lots a previous revision may have opened.
func (s *Service) replaceInventory(ctx context.Context, doc *NotaFiscal) error {
	var inputs []semen.ReplenishInput
	if doc.Direction == types.DirectionInbound {
		for i := range doc.Items {
			li := &doc.Items[i]
			if li.Kind != types.KindSemen {
				continue
			}
			inputs = append(inputs, semen.ReplenishInput{
				BullName:       li.BullName,
				Supplier:       doc.CounterpartyName,
				DocumentNumber: doc.Number,
				PurchaseDate:   doc.IssueDate,
				UnitPrice:      li.UnitPrice.Decimal,
				Location:       li.Location,
				Doses:          li.Doses,
			})
		}
	}
	_, err := s.inventory.ReplaceForDocument(ctx, doc.Number, inputs)
	return err
}

func (s *Service) intakeFrom(doc *NotaFiscal) breeding.Intake {
	intake := breeding.Intake{
		DocumentNumber: doc.Number,
		RecipientBatch: doc.RecipientBatch,
		ArrivalDate:    doc.ArrivalDate,
		TransferDate:   doc.TransferDate,
	}
	for i := range doc.Items {
		li := &doc.Items[i]
		if li.Kind != types.KindAnimal || li.EarringTag == "" {
			continue
		}
		intake.Items = append(intake.Items, breeding.IntakeItem{
			EarringTag: li.EarringTag,
			Sex:        li.Sex,
			Breed:      li.Breed,
			AgeBracket: li.AgeBracket,
			Weight:     li.Weight,
		})
	}
	return intake
}

// afterCommit runs the queued hooks and drops the audit entry. Both are
// best effort: the document is already committed.
func (s *Service) afterCommit(ctx context.Context, hooks *domain.PostCommit, operation string, doc *NotaFiscal) {
	hooks.Run(ctx)
	if s.auditSink == nil {
		return
	}
	entry := audit.Entry{
		Operation:   operation,
		Description: "nota fiscal " + doc.Number,
		Actor:       appctx.ActorName(ctx),
		Details: map[string]any{
			"document_id":  doc.ID.String(),
			"number":       doc.Number,
			"direction":    string(doc.Direction),
			"kind":         string(doc.Kind),
			"counterparty": doc.CounterpartyName,
			"total":        doc.Total.StringFixed(2),
			"line_count":   len(doc.Items),
		},
	}
	if err := s.auditSink.Record(ctx, entry); err != nil {
		logger.Error(ctx, "audit record failed", "operation", operation, "number", doc.Number, "error", err)
	}
}

// GetByNumber loads a document with its lines by external number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*NotaFiscal, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, doc)
}

// GetByID loads a document with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*NotaFiscal, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, doc)
}

func (s *Service) withItems(ctx context.Context, doc *NotaFiscal) (*NotaFiscal, error) {
	items, err := s.repo.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	return doc, nil
}

// List pages through document headers.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]NotaFiscal, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}
