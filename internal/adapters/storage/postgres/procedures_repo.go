package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"disercomi-tramites/internal/domain/procedures"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProceduresRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewProceduresRepo(db *sql.DB) *ProceduresRepo {
	return &ProceduresRepo{db: db, now: time.Now}
}

const procedureColumns = `
	id, tracking_code, owner_id, type, status,
	company_name, company_tax_id, address, sector,
	legal_rep_name, legal_rep_id, commercial_registry_number,
	contact_email, contact_phone,
	is_paid, is_signed, created_at, updated_at
`

func (r *ProceduresRepo) Insert(ctx context.Context, p procedures.Procedure) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO procedures (`+procedureColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		p.ID, p.TrackingCode, p.OwnerID, p.Type, string(p.Status),
		p.CompanyName, p.CompanyTaxID, p.Address, p.Sector,
		p.LegalRepName, p.LegalRepID, p.CommercialRegistryNumber,
		p.ContactEmail, p.ContactPhone,
		p.IsPaid, p.IsSigned, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapInsertError(err)
	}

	if err := insertChildren(ctx, tx, p); err != nil {
		return err
	}

	return tx.Commit()
}

// unique_violation: distinguimos por el nombre del índice para mapear al
// error de dominio correcto.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "tracking_code") {
			return procedures.ErrDuplicateTrackingCode
		}
		return procedures.ErrDuplicateID
	}
	return err
}

func insertChildren(ctx context.Context, tx *sql.Tx, p procedures.Procedure) error {
	for i, s := range p.Steps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO procedure_steps (procedure_id, step, position, status, date, assigned_to)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, p.ID, string(s.Step), i, string(s.Status), toNullTime(s.Date), s.AssignedTo); err != nil {
			return err
		}
	}
	for _, d := range p.Documents {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO procedure_documents (id, procedure_id, name, url, mime_type, uploaded_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, d.ID, p.ID, d.Name, d.URL, d.MimeType, d.UploadedAt); err != nil {
			return err
		}
	}
	for _, c := range p.Comments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO procedure_comments (id, procedure_id, author_id, author_name, text, type, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, c.ID, p.ID, c.AuthorID, c.AuthorName, c.Text, c.Type, c.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProceduresRepo) FindAll(ctx context.Context) ([]procedures.Procedure, error) {
	return r.list(ctx, ``, nil)
}

func (r *ProceduresRepo) FindByOwner(ctx context.Context, ownerID string) ([]procedures.Procedure, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}
	return r.list(ctx, `WHERE owner_id = $1`, []any{ownerID})
}

func (r *ProceduresRepo) FindByID(ctx context.Context, id string) (procedures.Procedure, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *ProceduresRepo) FindByTrackingCode(ctx context.Context, code string) (procedures.Procedure, error) {
	return r.getOne(ctx, `WHERE tracking_code = $1`, code)
}

// Update carga el registro con FOR UPDATE dentro de una transacción, aplica el
// mutator y reescribe el registro y sus hijos. La serialización por fila
// garantiza que dos appends concurrentes de comentarios sobrevivan ambos.
func (r *ProceduresRepo) Update(ctx context.Context, id string, fn procedures.Mutator) (procedures.Procedure, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return procedures.Procedure{}, err
	}
	defer tx.Rollback()

	current, err := scanProcedure(tx.QueryRowContext(ctx, `
		SELECT `+procedureColumns+` FROM procedures WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		return procedures.Procedure{}, err
	}
	if err := loadChildren(ctx, tx, &current); err != nil {
		return procedures.Procedure{}, err
	}

	next := fn(current)
	next.ID = current.ID
	next.TrackingCode = current.TrackingCode
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = r.now()

	if _, err := tx.ExecContext(ctx, `
		UPDATE procedures SET
			type = $2, status = $3,
			company_name = $4, company_tax_id = $5, address = $6, sector = $7,
			legal_rep_name = $8, legal_rep_id = $9, commercial_registry_number = $10,
			contact_email = $11, contact_phone = $12,
			is_paid = $13, is_signed = $14, updated_at = $15
		WHERE id = $1
	`,
		next.ID, next.Type, string(next.Status),
		next.CompanyName, next.CompanyTaxID, next.Address, next.Sector,
		next.LegalRepName, next.LegalRepID, next.CommercialRegistryNumber,
		next.ContactEmail, next.ContactPhone,
		next.IsPaid, next.IsSigned, next.UpdatedAt,
	); err != nil {
		return procedures.Procedure{}, err
	}

	// Reescritura completa de hijos: simple y correcta bajo el lock de fila.
	for _, table := range []string{"procedure_steps", "procedure_documents", "procedure_comments"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE procedure_id = $1`, next.ID); err != nil {
			return procedures.Procedure{}, err
		}
	}
	if err := insertChildren(ctx, tx, next); err != nil {
		return procedures.Procedure{}, err
	}

	if err := tx.Commit(); err != nil {
		return procedures.Procedure{}, err
	}
	return next, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcedure(row rowScanner) (procedures.Procedure, error) {
	var p procedures.Procedure
	var status string
	if err := row.Scan(
		&p.ID, &p.TrackingCode, &p.OwnerID, &p.Type, &status,
		&p.CompanyName, &p.CompanyTaxID, &p.Address, &p.Sector,
		&p.LegalRepName, &p.LegalRepID, &p.CommercialRegistryNumber,
		&p.ContactEmail, &p.ContactPhone,
		&p.IsPaid, &p.IsSigned, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return procedures.Procedure{}, procedures.ErrNotFound
		}
		return procedures.Procedure{}, err
	}
	p.Status = procedures.Status(status)
	return p, nil
}

func (r *ProceduresRepo) getOne(ctx context.Context, where, arg string) (procedures.Procedure, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return procedures.Procedure{}, procedures.ErrNotFound
	}

	p, err := scanProcedure(r.db.QueryRowContext(ctx, `
		SELECT `+procedureColumns+` FROM procedures `+where,
		arg))
	if err != nil {
		return procedures.Procedure{}, err
	}

	if err := loadChildren(ctx, r.db, &p); err != nil {
		return procedures.Procedure{}, err
	}
	return p, nil
}

func (r *ProceduresRepo) list(ctx context.Context, where string, args []any) ([]procedures.Procedure, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+procedureColumns+` FROM procedures `+where+` ORDER BY created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]procedures.Procedure, 0)
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := loadChildren(ctx, r.db, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadChildren(ctx context.Context, q querier, p *procedures.Procedure) error {
	steps, err := q.QueryContext(ctx, `
		SELECT step, status, date, assigned_to
		FROM procedure_steps WHERE procedure_id = $1 ORDER BY position ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer steps.Close()

	p.Steps = make([]procedures.StepStatus, 0, 8)
	for steps.Next() {
		var s procedures.StepStatus
		var step, status string
		var date sql.NullTime
		if err := steps.Scan(&step, &status, &date, &s.AssignedTo); err != nil {
			return err
		}
		s.Step = procedures.StepKey(step)
		s.Status = procedures.StepState(status)
		if date.Valid {
			t := date.Time
			s.Date = &t
		}
		p.Steps = append(p.Steps, s)
	}
	if err := steps.Err(); err != nil {
		return err
	}

	docs, err := q.QueryContext(ctx, `
		SELECT id, name, url, mime_type, uploaded_at
		FROM procedure_documents WHERE procedure_id = $1 ORDER BY uploaded_at ASC, id ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer docs.Close()

	p.Documents = make([]procedures.Document, 0)
	for docs.Next() {
		var d procedures.Document
		if err := docs.Scan(&d.ID, &d.Name, &d.URL, &d.MimeType, &d.UploadedAt); err != nil {
			return err
		}
		p.Documents = append(p.Documents, d)
	}
	if err := docs.Err(); err != nil {
		return err
	}

	comments, err := q.QueryContext(ctx, `
		SELECT id, author_id, author_name, text, type, created_at
		FROM procedure_comments WHERE procedure_id = $1 ORDER BY created_at ASC, id ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer comments.Close()

	p.Comments = make([]procedures.Comment, 0)
	for comments.Next() {
		var c procedures.Comment
		if err := comments.Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.Text, &c.Type, &c.CreatedAt); err != nil {
			return err
		}
		p.Comments = append(p.Comments, c)
	}
	return comments.Err()
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
