package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// WorkerFilter defines query params for worker listing.
type WorkerFilter struct {
	Role         *domain.WorkerRole
	Availability []domain.WorkerAvailability
	Limit        int
	Offset       int
}

// WorkerRepository handles persistence for workers.
type WorkerRepository interface {
	Create(ctx context.Context, worker *domain.Worker) error
	Update(ctx context.Context, worker *domain.Worker) error
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	GetByEmail(ctx context.Context, email string) (*domain.Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]domain.Worker, error)
	// ListAssignable returns Staff workers that are not offline.
	ListAssignable(ctx context.Context) ([]domain.Worker, error)
	ListByRole(ctx context.Context, role domain.WorkerRole) ([]domain.Worker, error)
	// Workloads returns the priority-weighted count of unresolved assigned
	// complaints per worker. Workers with no assignments are absent.
	Workloads(ctx context.Context, workerIDs []string) (map[string]int, error)
	UpdateAvailability(ctx context.Context, id string, availability domain.WorkerAvailability) error
}

type workerRepository struct {
	pool *pgxpool.Pool
}

// NewWorkerRepository instantiates the repository.
func NewWorkerRepository(pool *pgxpool.Pool) WorkerRepository {
	return &workerRepository{pool: pool}
}

const workerColumns = `id, name, email, password_hash, role, expertise, availability, created_at, updated_at`

func (r *workerRepository) Create(ctx context.Context, worker *domain.Worker) error {
	const query = `
        INSERT INTO workers (name, email, password_hash, role, expertise, availability)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		worker.Name,
		worker.Email,
		worker.PasswordHash,
		worker.Role,
		worker.Expertise,
		worker.Availability,
	).Scan(&worker.ID, &worker.CreatedAt, &worker.UpdatedAt)
}

func (r *workerRepository) Update(ctx context.Context, worker *domain.Worker) error {
	const query = `
        UPDATE workers
        SET name=$1, email=$2, password_hash=$3, role=$4, expertise=$5, availability=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		worker.Name,
		worker.Email,
		worker.PasswordHash,
		worker.Role,
		worker.Expertise,
		worker.Availability,
		worker.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE id=$1`, workerColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *workerRepository) GetByEmail(ctx context.Context, email string) (*domain.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE email=$1`, workerColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *workerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Worker, error) {
	var worker domain.Worker
	if err := r.pool.QueryRow(ctx, query, arg).Scan(workerFields(&worker)...); err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) List(ctx context.Context, filter WorkerFilter) ([]domain.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers`, workerColumns)
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if len(filter.Availability) > 0 {
		placeholders := make([]string, len(filter.Availability))
		for i, a := range filter.Availability {
			args = append(args, a)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("availability IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY id"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkers(rows)
}

func (r *workerRepository) ListAssignable(ctx context.Context) ([]domain.Worker, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM workers
        WHERE role=$1 AND availability <> $2
        ORDER BY id`, workerColumns)
	rows, err := r.pool.Query(ctx, query, domain.WorkerRoleStaff, domain.AvailabilityOffline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkers(rows)
}

func (r *workerRepository) ListByRole(ctx context.Context, role domain.WorkerRole) ([]domain.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE role=$1 ORDER BY id`, workerColumns)
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkers(rows)
}

func (r *workerRepository) Workloads(ctx context.Context, workerIDs []string) (map[string]int, error) {
	const query = `
        SELECT assigned_to,
               SUM(CASE priority
                   WHEN 'CRITICAL' THEN $2::int
                   WHEN 'HIGH' THEN $3::int
                   WHEN 'MEDIUM' THEN $4::int
                   ELSE $5::int END)
        FROM complaints
        WHERE assigned_to = ANY($1) AND status <> 'RESOLVED'
        GROUP BY assigned_to`
	rows, err := r.pool.Query(ctx, query, workerIDs,
		domain.PriorityWeight(domain.ComplaintPriorityCritical),
		domain.PriorityWeight(domain.ComplaintPriorityHigh),
		domain.PriorityWeight(domain.ComplaintPriorityMedium),
		domain.PriorityWeight(domain.ComplaintPriorityLow))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workloads := make(map[string]int, len(workerIDs))
	for rows.Next() {
		var id string
		var load int
		if err := rows.Scan(&id, &load); err != nil {
			return nil, err
		}
		workloads[id] = load
	}
	return workloads, rows.Err()
}

func (r *workerRepository) UpdateAvailability(ctx context.Context, id string, availability domain.WorkerAvailability) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE workers SET availability=$1, updated_at=NOW() WHERE id=$2`,
		availability, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func workerFields(w *domain.Worker) []any {
	return []any{
		&w.ID,
		&w.Name,
		&w.Email,
		&w.PasswordHash,
		&w.Role,
		&w.Expertise,
		&w.Availability,
		&w.CreatedAt,
		&w.UpdatedAt,
	}
}

func scanWorkers(rows pgx.Rows) ([]domain.Worker, error) {
	var result []domain.Worker
	for rows.Next() {
		var worker domain.Worker
		if err := rows.Scan(workerFields(&worker)...); err != nil {
			return nil, err
		}
		result = append(result, worker)
	}
	return result, rows.Err()
}
