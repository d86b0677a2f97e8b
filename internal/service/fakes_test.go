package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// fakeComplaintRepo keeps complaints in a map, mirroring the conditional
// update semantics of the Postgres implementation.
type fakeComplaintRepo struct {
	mu         sync.Mutex
	complaints map[string]*domain.Complaint
	nextID     int
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{complaints: map[string]*domain.Complaint{}}
}

func (f *fakeComplaintRepo) put(c *domain.Complaint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.complaints[c.ID] = &cp
}

func (f *fakeComplaintRepo) Create(ctx context.Context, c *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = fmt.Sprintf("c-%d", f.nextID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.complaints[c.ID] = &cp
	return nil
}

func (f *fakeComplaintRepo) Update(ctx context.Context, c *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.complaints[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	f.complaints[c.ID] = &cp
	return nil
}

func (f *fakeComplaintRepo) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComplaintRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.complaints[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.complaints, id)
	return nil
}

func (f *fakeComplaintRepo) ListWithFilter(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Complaint
	for _, c := range f.complaints {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeComplaintRepo) ListActive(ctx context.Context) ([]domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Complaint
	for _, c := range f.complaints {
		if c.Status != domain.ComplaintStatusResolved {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComplaintRepo) AssignWorker(ctx context.Context, complaintID, workerID string, override bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[complaintID]
	if !ok {
		return pgx.ErrNoRows
	}
	if c.Status == domain.ComplaintStatusResolved {
		return pgx.ErrNoRows
	}
	if c.AssignedTo != nil && !override {
		return pgx.ErrNoRows
	}
	c.AssignedTo = &workerID
	c.Status = domain.ComplaintStatusAssigned
	return nil
}

func (f *fakeComplaintRepo) SetEscalated(ctx context.Context, id string) error {
	return f.setFlag(id, func(c *domain.Complaint) { c.IsEscalated = true })
}

func (f *fakeComplaintRepo) MarkOverdue(ctx context.Context, id string) error {
	return f.setFlag(id, func(c *domain.Complaint) { c.IsOverdue = true })
}

func (f *fakeComplaintRepo) MarkRecurring(ctx context.Context, id string) error {
	return f.setFlag(id, func(c *domain.Complaint) { c.IsRecurring = true })
}

func (f *fakeComplaintRepo) setFlag(id string, apply func(*domain.Complaint)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[id]
	if !ok {
		return pgx.ErrNoRows
	}
	apply(c)
	return nil
}

func (f *fakeComplaintRepo) CountByRequesterCategorySince(ctx context.Context, requesterID string, category domain.ComplaintCategory, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.complaints {
		if c.RequesterID == requesterID && c.Category == category && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// fakeWorkerRepo keeps workers in a map with a workload overlay for
// assignment tests.
type fakeWorkerRepo struct {
	mu        sync.Mutex
	workers   map[string]*domain.Worker
	workloads map[string]int
}

func newFakeWorkerRepo() *fakeWorkerRepo {
	return &fakeWorkerRepo{workers: map[string]*domain.Worker{}, workloads: map[string]int{}}
}

func (f *fakeWorkerRepo) put(w *domain.Worker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *w
	f.workers[w.ID] = &cp
}

func (f *fakeWorkerRepo) Create(ctx context.Context, w *domain.Worker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == "" {
		w.ID = fmt.Sprintf("w-%d", len(f.workers)+1)
	}
	cp := *w
	f.workers[w.ID] = &cp
	return nil
}

func (f *fakeWorkerRepo) Update(ctx context.Context, w *domain.Worker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workers[w.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *w
	f.workers[w.ID] = &cp
	return nil
}

func (f *fakeWorkerRepo) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWorkerRepo) GetByEmail(ctx context.Context, email string) (*domain.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.workers {
		if w.Email == email {
			cp := *w
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeWorkerRepo) List(ctx context.Context, filter repository.WorkerFilter) ([]domain.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Worker
	for _, w := range f.workers {
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeWorkerRepo) ListAssignable(ctx context.Context) ([]domain.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Worker
	for _, w := range f.workers {
		if w.Role == domain.WorkerRoleStaff && w.Availability != domain.AvailabilityOffline {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkerRepo) ListByRole(ctx context.Context, role domain.WorkerRole) ([]domain.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Worker
	for _, w := range f.workers {
		if w.Role == role {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkerRepo) Workloads(ctx context.Context, workerIDs []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, id := range workerIDs {
		if load, ok := f.workloads[id]; ok {
			out[id] = load
		}
	}
	return out, nil
}

func (f *fakeWorkerRepo) UpdateAvailability(ctx context.Context, id string, availability domain.WorkerAvailability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return pgx.ErrNoRows
	}
	w.Availability = availability
	return nil
}

// fakeHistoryRepo records audit entries in order.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.StatusHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (f *fakeHistoryRepo) Create(ctx context.Context, entry *domain.StatusHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = fmt.Sprintf("h-%d", len(f.entries)+1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByComplaint(ctx context.Context, complaintID string, limit, offset int) ([]domain.StatusHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StatusHistory
	for _, e := range f.entries {
		if e.ComplaintID == complaintID {
			out = append(out, e)
		}
	}
	return out, nil
}

// recordingDispatcher collects published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
