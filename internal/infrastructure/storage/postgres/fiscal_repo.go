package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/domain/fiscal"
)

const (
	documentsTable     = "nf_documents"
	documentItemsTable = "nf_document_items"
)

// FiscalRepo implements fiscal.Repository.
type FiscalRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

func NewFiscalRepo(txm *TxManager) *FiscalRepo {
	return &FiscalRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var documentColumns = []string{
	"id", "number", "issue_date", "arrival_date", "direction", "kind",
	"counterparty_name", "counterparty_tax_id", "tag", "is_recipient_intake",
	"recipient_batch", "transfer_date", "total", "notes", "version",
	"created_at", "updated_at",
}

var itemColumns = []string{
	"id", "document_id", "line_no", "kind", "description", "earring_tag",
	"sex", "breed", "age_bracket", "weight", "batch_quantity",
	"bull_name", "doses", "location", "embryos", "unit_price",
}

func (r *FiscalRepo) Create(ctx context.Context, doc *fiscal.NotaFiscal) error {
	q := r.builder.Insert(documentsTable).
		Columns("id", "number", "issue_date", "arrival_date", "direction", "kind",
			"counterparty_name", "counterparty_tax_id", "tag", "is_recipient_intake",
			"recipient_batch", "transfer_date", "total", "notes", "version").
		Values(doc.ID, doc.Number, doc.IssueDate, doc.ArrivalDate, doc.Direction, doc.Kind,
			doc.CounterpartyName, doc.CounterpartyTaxID, doc.Tag, doc.RecipientIntake,
			doc.RecipientBatch, doc.TransferDate, doc.Total, doc.Notes, 1).
		Suffix("RETURNING version, created_at, updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&doc.Version, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if IsUniqueViolation(err, "nf_documents_number_key") {
			return apperror.NewDuplicateDocument(doc.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Update rewrites the header under optimistic locking: a stale version
// means someone else saved first.
func (r *FiscalRepo) Update(ctx context.Context, doc *fiscal.NotaFiscal) error {
	q := r.builder.Update(documentsTable).
		Set("issue_date", doc.IssueDate).
		Set("arrival_date", doc.ArrivalDate).
		Set("direction", doc.Direction).
		Set("kind", doc.Kind).
		Set("counterparty_name", doc.CounterpartyName).
		Set("counterparty_tax_id", doc.CounterpartyTaxID).
		Set("tag", doc.Tag).
		Set("is_recipient_intake", doc.RecipientIntake).
		Set("recipient_batch", doc.RecipientBatch).
		Set("transfer_date", doc.TransferDate).
		Set("total", doc.Total).
		Set("notes", doc.Notes).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": doc.ID, "version": doc.Version}).
		Suffix("RETURNING version, updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&doc.Version, &doc.UpdatedAt); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewConflict("document was modified concurrently").
				WithDetail("documentId", doc.ID.String())
		}
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (r *FiscalRepo) GetByID(ctx context.Context, docID id.ID) (*fiscal.NotaFiscal, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID)
}

func (r *FiscalRepo) GetByNumber(ctx context.Context, number string) (*fiscal.NotaFiscal, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *FiscalRepo) getOne(ctx context.Context, where squirrel.Eq, ref any) (*fiscal.NotaFiscal, error) {
	q := r.builder.Select(documentColumns...).
		From(documentsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc fiscal.NotaFiscal
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("nota fiscal", ref)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (r *FiscalRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	sql := "SELECT EXISTS (SELECT 1 FROM nf_documents WHERE number = $1)"
	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check document number: %w", err)
	}
	return exists, nil
}

// SaveItems replaces the document's lines wholesale.
func (r *FiscalRepo) SaveItems(ctx context.Context, docID id.ID, items []fiscal.LineItem) error {
	querier := r.txm.GetQuerier(ctx)

	delSQL, delArgs, err := r.builder.Delete(documentItemsTable).
		Where(squirrel.Eq{"document_id": docID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(documentItemsTable).Columns(itemColumns...)
	for i := range items {
		li := &items[i]
		if id.IsNil(li.ID) {
			li.ID = id.New()
		}
		li.DocumentID = docID
		q = q.Values(li.ID, li.DocumentID, li.LineNo, li.Kind, li.Description,
			li.EarringTag, li.Sex, li.Breed, li.AgeBracket, li.Weight,
			li.BatchQuantity, li.BullName, li.Doses, li.Location, li.Embryos, li.UnitPrice)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func (r *FiscalRepo) GetItems(ctx context.Context, docID id.ID) ([]fiscal.LineItem, error) {
	q := r.builder.Select(itemColumns...).
		From(documentItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []fiscal.LineItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

func (r *FiscalRepo) List(ctx context.Context, filter fiscal.ListFilter) ([]fiscal.NotaFiscal, int64, error) {
	q := r.builder.Select(documentColumns...).From(documentsTable)
	countQ := r.builder.Select("COUNT(*)").From(documentsTable)

	apply := func(b squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.Direction != "" {
			b = b.Where(squirrel.Eq{"direction": filter.Direction})
		}
		if filter.Kind != "" {
			b = b.Where(squirrel.Eq{"kind": filter.Kind})
		}
		if filter.From != nil {
			b = b.Where(squirrel.GtOrEq{"issue_date": *filter.From})
		}
		if filter.To != nil {
			b = b.Where(squirrel.LtOrEq{"issue_date": *filter.To})
		}
		return b
	}
	q = apply(q).
		OrderBy("issue_date DESC", "number DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	countQ = apply(countQ)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var docs []fiscal.NotaFiscal
	if err := pgxscan.Select(ctx, querier, &docs, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select documents: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

var _ fiscal.Repository = (*FiscalRepo)(nil)
