package fiscal

import (
	"context"
	"testing"
	"time"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/core/types"
	"rebanho/internal/domain"
	"rebanho/internal/domain/breeding"
	"rebanho/internal/domain/herd"
	"rebanho/internal/domain/ledger"
	"rebanho/internal/domain/semen"
)

// Mock objects

type mockRepo struct {
	docs       map[string]*NotaFiscal
	items      map[id.ID][]LineItem
	saveCalls  int
	updateDone bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		docs:  make(map[string]*NotaFiscal),
		items: make(map[id.ID][]LineItem),
	}
}

func (m *mockRepo) Create(_ context.Context, doc *NotaFiscal) error {
	cp := *doc
	m.docs[doc.Number] = &cp
	return nil
}

func (m *mockRepo) Update(_ context.Context, doc *NotaFiscal) error {
	cp := *doc
	m.docs[doc.Number] = &cp
	m.updateDone = true
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, docID id.ID) (*NotaFiscal, error) {
	for _, d := range m.docs {
		if d.ID == docID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("nota fiscal", docID)
}

func (m *mockRepo) GetByNumber(_ context.Context, number string) (*NotaFiscal, error) {
	if d, ok := m.docs[number]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, apperror.NewNotFound("nota fiscal", number)
}

func (m *mockRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	_, ok := m.docs[number]
	return ok, nil
}

func (m *mockRepo) SaveItems(_ context.Context, docID id.ID, items []LineItem) error {
	m.items[docID] = items
	m.saveCalls++
	return nil
}

func (m *mockRepo) GetItems(_ context.Context, docID id.ID) ([]LineItem, error) {
	return m.items[docID], nil
}

func (m *mockRepo) List(_ context.Context, _ ListFilter) ([]NotaFiscal, int64, error) {
	out := make([]NotaFiscal, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

type mockTxManager struct{}

func (mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockMasters struct {
	upserts []herd.Key
	nextID  int64
}

func (m *mockMasters) Upsert(_ context.Context, key herd.Key, _ herd.Attributes) (*herd.Animal, error) {
	m.upserts = append(m.upserts, key)
	m.nextID++
	return &herd.Animal{ID: m.nextID, Series: key.Series, Registration: key.Registration}, nil
}

// mockInventory mirrors the replace contract: each call swaps the lots
// keyed to the document for the given inputs.
type mockInventory struct {
	lots  map[string][]semen.Lot
	calls int
}

func newMockInventory() *mockInventory {
	return &mockInventory{lots: make(map[string][]semen.Lot)}
}

func (m *mockInventory) ReplaceForDocument(_ context.Context, number string, inputs []semen.ReplenishInput) ([]semen.Lot, error) {
	m.calls++
	lots := make([]semen.Lot, 0, len(inputs))
	for _, in := range inputs {
		lots = append(lots, semen.Lot{
			ID:             id.New(),
			BullName:       in.BullName,
			DocumentNumber: number,
			Location:       in.Location,
			TotalDoses:     in.Doses,
			AvailableDoses: in.Doses,
		})
	}
	m.lots[number] = lots
	return lots, nil
}

// dosesOnBooks sums the available doses across every lot of a document.
func (m *mockInventory) dosesOnBooks(number string) int {
	total := 0
	for _, lot := range m.lots[number] {
		total += lot.AvailableDoses
	}
	return total
}

type mockScheduler struct {
	intakes []breeding.Intake
}

func (m *mockScheduler) ScheduleIntake(_ context.Context, intake breeding.Intake, _ *domain.PostCommit) (*breeding.Outcome, error) {
	m.intakes = append(m.intakes, intake)
	return &breeding.Outcome{AnimalsUpserted: len(intake.Items)}, nil
}

type stubClassifier struct {
	decision ledger.Decision
}

func (s stubClassifier) Classify(context.Context, ledger.DocumentInfo) (ledger.Decision, error) {
	return s.decision, nil
}

type mockPoster struct {
	replaced map[string][]ledger.Movement
}

func newMockPoster() *mockPoster {
	return &mockPoster{replaced: make(map[string][]ledger.Movement)}
}

func (m *mockPoster) ReplaceForDocument(_ context.Context, number string, movements []ledger.Movement) error {
	m.replaced[number] = movements
	return nil
}

type testEnv struct {
	repo      *mockRepo
	masters   *mockMasters
	inventory *mockInventory
	scheduler *mockScheduler
	poster    *mockPoster
	service   *Service
}

func newTestEnv(decision ledger.Decision) *testEnv {
	env := &testEnv{
		repo:      newMockRepo(),
		masters:   &mockMasters{},
		inventory: newMockInventory(),
		scheduler: &mockScheduler{},
		poster:    newMockPoster(),
	}
	env.service = NewService(
		env.repo, mockTxManager{}, env.masters, env.inventory, env.scheduler,
		stubClassifier{decision: decision}, env.poster, nil,
		Config{DefaultSeries: "RPT"},
	)
	return env
}

func TestCreateSemenPurchase(t *testing.T) {
	env := newTestEnv(ledger.Decision{Relevant: true, Tag: "fazenda-sul"})
	ctx := context.Background()

	// No explicit tag: the classifier match supplies it.
	in := validDoc()
	in.Tag = ""
	in.Items[0].Location = "Botijao 2"
	doc, err := env.service.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if doc.Total.String() != "300" {
		t.Errorf("Total = %s, want 300 (20 doses x 15,00)", doc.Total)
	}
	lots := env.inventory.lots["NF-1001"]
	if len(lots) != 1 {
		t.Fatalf("provisioned %d lots, want 1", len(lots))
	}
	if lots[0].BullName != "Nelore FIV" || lots[0].TotalDoses != 20 {
		t.Errorf("lot = %+v", lots[0])
	}
	if lots[0].Location != "Botijao 2" {
		t.Errorf("lot location = %q, want the line's canister", lots[0].Location)
	}
	movements := env.poster.replaced["NF-1001"]
	if len(movements) != 1 {
		t.Fatalf("posted %d movements, want 1", len(movements))
	}
	if movements[0].Tag != "fazenda-sul" {
		t.Errorf("movement tag = %q, want classifier tag", movements[0].Tag)
	}
	if movements[0].Amount.String() != "300" {
		t.Errorf("movement amount = %s, want 300", movements[0].Amount)
	}
	if doc.Tag != "fazenda-sul" {
		t.Errorf("document tag = %q, want inferred tag", doc.Tag)
	}
}

func TestCreateRequiresTagWhenNotInferable(t *testing.T) {
	env := newTestEnv(ledger.Decision{})

	doc := validDoc()
	doc.Tag = ""
	_, err := env.service.Create(context.Background(), doc)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("Create() without tag = %v, want VALIDATION_ERROR", err)
	}
	if env.repo.saveCalls != 0 {
		t.Errorf("SaveItems calls = %d, want 0 before validation passes", env.repo.saveCalls)
	}
}

func TestCreateDuplicateNumber(t *testing.T) {
	env := newTestEnv(ledger.Decision{})
	ctx := context.Background()

	if _, err := env.service.Create(ctx, validDoc()); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}
	_, err := env.service.Create(ctx, validDoc())
	if !apperror.IsCode(err, apperror.CodeDuplicateDocument) {
		t.Errorf("second Create() = %v, want DUPLICATE_DOCUMENT", err)
	}
}

func TestCreateAnimalPurchaseUpsertsMasters(t *testing.T) {
	env := newTestEnv(ledger.Decision{})
	ctx := context.Background()

	doc := validDoc()
	doc.Kind = types.KindAnimal
	doc.Items = []LineItem{
		{Kind: types.KindAnimal, EarringTag: "SER123", Sex: "F", UnitPrice: price("2.000,00")},
		{Kind: types.KindAnimal, BatchQuantity: 10, UnitPrice: price("1.500,00")},
	}

	created, err := env.service.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Only the tagged line reaches the master; batch lines have no identity.
	if len(env.masters.upserts) != 1 {
		t.Fatalf("upserted %d animals, want 1", len(env.masters.upserts))
	}
	if key := env.masters.upserts[0]; key.Series != "SER" || key.Registration != "123" {
		t.Errorf("upsert key = %+v, want SER/123", key)
	}
	if created.Total.String() != "17000" {
		t.Errorf("Total = %s, want 17000", created.Total)
	}
	// Not relevant: posting still runs with an empty set.
	if movements, ok := env.poster.replaced["NF-1001"]; !ok || len(movements) != 0 {
		t.Errorf("poster should replace with empty set, got %v", movements)
	}
}

func TestCreateRecipientIntakeDelegatesToScheduler(t *testing.T) {
	env := newTestEnv(ledger.Decision{})
	ctx := context.Background()

	transfer := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	doc := validDoc()
	doc.Kind = types.KindAnimal
	doc.RecipientIntake = true
	doc.RecipientBatch = "Lote 3"
	doc.TransferDate = &transfer
	doc.Items = []LineItem{
		{Kind: types.KindAnimal, EarringTag: "RPT-201", Sex: "F", UnitPrice: price("1.800,00")},
		{Kind: types.KindAnimal, EarringTag: "RPT-202", Sex: "F", UnitPrice: price("1.800,00")},
	}

	if _, err := env.service.Create(ctx, doc); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if len(env.scheduler.intakes) != 1 {
		t.Fatalf("scheduled %d intakes, want 1", len(env.scheduler.intakes))
	}
	intake := env.scheduler.intakes[0]
	if len(intake.Items) != 2 {
		t.Errorf("intake items = %d, want 2", len(intake.Items))
	}
	if intake.TransferDate == nil || !intake.TransferDate.Equal(transfer) {
		t.Errorf("intake transfer date = %v, want %v", intake.TransferDate, transfer)
	}
	// The scheduler owns the master upserts for intakes.
	if len(env.masters.upserts) != 0 {
		t.Errorf("direct upserts = %d, want 0 for recipient intake", len(env.masters.upserts))
	}
}

func TestCreateRecipientIntakeWithoutBatchStillSchedules(t *testing.T) {
	env := newTestEnv(ledger.Decision{})
	ctx := context.Background()

	doc := validDoc()
	doc.Kind = types.KindAnimal
	doc.RecipientIntake = true
	doc.Items = []LineItem{
		{Kind: types.KindAnimal, EarringTag: "RPT-301", Sex: "F", UnitPrice: price("1.800,00")},
	}

	if _, err := env.service.Create(ctx, doc); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(env.scheduler.intakes) != 1 {
		t.Fatalf("scheduled %d intakes, want 1: the batch id is optional", len(env.scheduler.intakes))
	}
	if batch := env.scheduler.intakes[0].RecipientBatch; batch != "" {
		t.Errorf("intake batch = %q, want empty", batch)
	}
}

func TestUpdateReplacesWholesale(t *testing.T) {
	env := newTestEnv(ledger.Decision{Relevant: true, Tag: "fazenda-sul"})
	ctx := context.Background()

	created, err := env.service.Create(ctx, validDoc())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	updated := validDoc()
	updated.Items = []LineItem{
		{Kind: types.KindSemen, BullName: "Gir PO", Doses: 50, UnitPrice: price("12,00")},
	}
	result, err := env.service.Update(ctx, created.ID, updated)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if result.Total.String() != "600" {
		t.Errorf("Total = %s, want 600 after replacement", result.Total)
	}
	if env.repo.saveCalls != 2 {
		t.Errorf("SaveItems calls = %d, want 2 (create + update)", env.repo.saveCalls)
	}
	movements := env.poster.replaced["NF-1001"]
	if len(movements) != 1 || movements[0].Amount.String() != "600" {
		t.Errorf("movements after update = %+v, want single 600", movements)
	}
}

func TestUpdateReprovisionsInsteadOfDuplicatingLots(t *testing.T) {
	env := newTestEnv(ledger.Decision{Relevant: true, Tag: "compra-semen"})
	ctx := context.Background()

	created, err := env.service.Create(ctx, validDoc())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Saving the same 20-dose line again must leave 20 doses on the
	// books, not 40.
	if _, err := env.service.Update(ctx, created.ID, validDoc()); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got := env.inventory.dosesOnBooks("NF-1001"); got != 20 {
		t.Errorf("doses on the books = %d, want 20", got)
	}
	if lots := env.inventory.lots["NF-1001"]; len(lots) != 1 {
		t.Errorf("lots after update = %d, want 1", len(lots))
	}
	if env.inventory.calls != 2 {
		t.Errorf("inventory calls = %d, want 2 (create + update)", env.inventory.calls)
	}
}

func TestUpdateToNonSemenClearsLots(t *testing.T) {
	env := newTestEnv(ledger.Decision{Relevant: true, Tag: "compra-semen"})
	ctx := context.Background()

	created, err := env.service.Create(ctx, validDoc())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	changed := validDoc()
	changed.Kind = types.KindAnimal
	changed.Items = []LineItem{
		{Kind: types.KindAnimal, EarringTag: "SER123", UnitPrice: price("2.000,00")},
	}
	if _, err := env.service.Update(ctx, created.ID, changed); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if lots := env.inventory.lots["NF-1001"]; len(lots) != 0 {
		t.Errorf("lots after update = %d, want 0", len(lots))
	}
}

func TestUpdateNumberImmutable(t *testing.T) {
	env := newTestEnv(ledger.Decision{})
	ctx := context.Background()

	created, err := env.service.Create(ctx, validDoc())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	changed := validDoc()
	changed.Number = "NF-9999"
	_, err = env.service.Update(ctx, created.ID, changed)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("Update() with new number = %v, want VALIDATION_ERROR", err)
	}
}

func TestUpdateUnknownDocument(t *testing.T) {
	env := newTestEnv(ledger.Decision{})
	_, err := env.service.Update(context.Background(), id.New(), validDoc())
	if !apperror.IsNotFound(err) {
		t.Errorf("Update() unknown id = %v, want NOT_FOUND", err)
	}
}
