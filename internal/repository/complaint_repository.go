package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	RequesterID *string
	AssignedTo  *string
	Statuses    []domain.ComplaintStatus
	Priorities  []domain.ComplaintPriority
	Categories  []domain.ComplaintCategory
	Limit       int
	Offset      int
}

// ComplaintRepository encapsulates complaint persistence. Every method is a
// single-record atomic operation; callers never hold locks across calls.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	// ListActive returns all complaints with status != RESOLVED.
	ListActive(ctx context.Context) ([]domain.Complaint, error)
	// AssignWorker conditionally sets assigned_to and forces status to
	// ASSIGNED. Resolved complaints are never touched; unless override is
	// true the update additionally requires assigned_to to still be NULL.
	// pgx.ErrNoRows signals a lost race.
	AssignWorker(ctx context.Context, complaintID, workerID string, override bool) error
	SetEscalated(ctx context.Context, id string) error
	MarkOverdue(ctx context.Context, id string) error
	MarkRecurring(ctx context.Context, id string) error
	CountByRequesterCategorySince(ctx context.Context, requesterID string, category domain.ComplaintCategory, since time.Time) (int, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, requester_id, title, description, category, priority, status,
               assigned_to, sla_deadline, resolved_at, is_overdue, is_escalated, is_recurring,
               created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	// created_at is written explicitly so the stored sla_deadline is exactly
	// created_at + the priority's SLA window.
	const query = `
        INSERT INTO complaints (requester_id, title, description, category, priority, status, assigned_to, sla_deadline, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.RequesterID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.AssignedTo,
		complaint.SLADeadline,
		complaint.CreatedAt,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            assigned_to=$6, sla_deadline=$7, resolved_at=$8, is_overdue=$9, is_escalated=$10,
            is_recurring=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.AssignedTo,
		complaint.SLADeadline,
		complaint.ResolvedAt,
		complaint.IsOverdue,
		complaint.IsEscalated,
		complaint.IsRecurring,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(complaintFields(&complaint)...); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	// status_history rows go with the complaint via ON DELETE CASCADE.
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := fmt.Sprintf(`SELECT %s FROM complaints`, complaintColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListActive(ctx context.Context) ([]domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE status <> $1 ORDER BY created_at`, complaintColumns)
	rows, err := r.pool.Query(ctx, query, domain.ComplaintStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) AssignWorker(ctx context.Context, complaintID, workerID string, override bool) error {
	const query = `
        UPDATE complaints SET assigned_to=$1, status=$2, updated_at=NOW()
        WHERE id=$3 AND status <> $4 AND (assigned_to IS NULL OR $5=TRUE)`
	cmd, err := r.pool.Exec(ctx, query, workerID, domain.ComplaintStatusAssigned, complaintID, domain.ComplaintStatusResolved, override)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) SetEscalated(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "is_escalated")
}

func (r *complaintRepository) MarkOverdue(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "is_overdue")
}

func (r *complaintRepository) MarkRecurring(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "is_recurring")
}

func (r *complaintRepository) setFlag(ctx context.Context, id, column string) error {
	query := fmt.Sprintf(`UPDATE complaints SET %s=TRUE, updated_at=NOW() WHERE id=$1`, column)
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) CountByRequesterCategorySince(ctx context.Context, requesterID string, category domain.ComplaintCategory, since time.Time) (int, error) {
	const query = `
        SELECT COUNT(*) FROM complaints
        WHERE requester_id=$1 AND category=$2 AND created_at >= $3`
	var count int
	if err := r.pool.QueryRow(ctx, query, requesterID, category, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func complaintFields(c *domain.Complaint) []any {
	return []any{
		&c.ID,
		&c.RequesterID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Priority,
		&c.Status,
		&c.AssignedTo,
		&c.SLADeadline,
		&c.ResolvedAt,
		&c.IsOverdue,
		&c.IsEscalated,
		&c.IsRecurring,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(complaintFields(&complaint)...); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
