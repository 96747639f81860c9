package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/cache"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/config"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
)

var errConnReset = errors.New("read: connection reset by peer")

type versionedRow interface {
	repositories.VersionedEntity
	SetVersionToken(time.Time)
}

// memTable behaves like a table whose UPDATE carries
// `WHERE id=$1 AND updated_at=$2`.
type memTable[T versionedRow] struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]T
	clock      time.Time
	clone      func(T) T
	failWrites error
	writes     int
}

func newMemTable[T versionedRow](clone func(T) T) *memTable[T] {
	return &memTable[T]{
		rows:  map[uuid.UUID]T{},
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		clone: clone,
	}
}

func (m *memTable[T]) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memTable[T]) put(v T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.clone(v)
	c.SetVersionToken(m.tick())
	m.rows[c.GetID()] = c
	return m.clone(c)
}

func (m *memTable[T]) remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

func (m *memTable[T]) get(_ context.Context, id uuid.UUID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	row, ok := m.rows[id]
	if !ok {
		return zero, nil
	}
	return m.clone(row), nil
}

func (m *memTable[T]) updateIfVersion(_ context.Context, v T, expected time.Time) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.failWrites != nil {
		return zero, m.failWrites
	}
	cur, ok := m.rows[v.GetID()]
	if !ok || !cur.GetVersionToken().Equal(expected) {
		return zero, nil
	}
	next := m.clone(v)
	next.SetVersionToken(m.tick())
	m.rows[next.GetID()] = next
	m.writes++
	return m.clone(next), nil
}

func (m *memTable[T]) save(ctx context.Context, v T, expected time.Time) (T, error) {
	return repositories.WriteIfVersion(ctx, v, expected, m.get, m.updateIfVersion)
}

func (m *memTable[T]) all() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, m.clone(r))
	}
	return out
}

// ---------------------------------------------------------------------
// orders
// ---------------------------------------------------------------------

type fakeOrderRepo struct {
	*memTable[*models.Order]
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{newMemTable(func(o *models.Order) *models.Order { c := *o; return &c })}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	stored := r.put(o)
	o.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.get(ctx, id)
}

func (r *fakeOrderRepo) List(_ context.Context, status *models.OrderStatusType, limit int) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range r.all() {
		if status == nil || o.Status == *status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateIfVersion(ctx context.Context, o *models.Order, expected time.Time) (*models.Order, error) {
	return r.updateIfVersion(ctx, o, expected)
}

func (r *fakeOrderRepo) SaveIfVersion(ctx context.Context, o *models.Order, expected time.Time) (*models.Order, error) {
	return r.save(ctx, o, expected)
}

func (r *fakeOrderRepo) BulkUpdateStatus(_ context.Context, ids []uuid.UUID, status models.OrderStatusType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		o, ok := r.rows[id]
		if !ok {
			continue
		}
		o.Status = status
		o.UpdatedAt = r.tick()
		n++
	}
	return n, nil
}

// ---------------------------------------------------------------------
// products and variants
// ---------------------------------------------------------------------

type fakeProductRepo struct {
	*memTable[*models.Product]
	variants *fakeVariantRepo
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Options = append([]models.ProductOption(nil), p.Options...)
	return &c
}

func newFakeProductRepo(variants *fakeVariantRepo) *fakeProductRepo {
	return &fakeProductRepo{memTable: newMemTable(cloneProduct), variants: variants}
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	for _, existing := range r.all() {
		if existing.Slug == p.Slug {
			return &pgconn.PgError{
				Code:           "23505",
				Message:        "duplicate key value violates unique constraint \"products_slug_key\"",
				ConstraintName: "products_slug_key",
			}
		}
	}
	for i := range p.Options {
		p.Options[i].ID = uuid.New()
		p.Options[i].ProductID = p.ID
	}
	stored := r.put(p)
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.get(ctx, id)
}

func (r *fakeProductRepo) UpdateIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
	cur, _ := r.get(ctx, p.ID)
	if cur != nil {
		edit := cloneProduct(p)
		edit.Options = cur.Options
		p = edit
	}
	return r.updateIfVersion(ctx, p, expected)
}

func (r *fakeProductRepo) SaveIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
	return repositories.WriteIfVersion(ctx, p, expected, r.get, r.UpdateIfVersion)
}

func (r *fakeProductRepo) SaveOptionsIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
	replace := func(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
		cur, _ := r.get(ctx, p.ID)
		if cur == nil {
			return nil, nil
		}
		next := cloneProduct(cur)
		next.Options = append([]models.ProductOption(nil), p.Options...)
		return r.updateIfVersion(ctx, next, expected)
	}
	return repositories.WriteIfVersion(ctx, p, expected, r.get, replace)
}

func (r *fakeProductRepo) SaveVariantsIfVersion(ctx context.Context, p *models.Product, expected time.Time, variants []models.ProductVariant) (*models.Product, error) {
	replace := func(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
		cur, _ := r.get(ctx, p.ID)
		if cur == nil {
			return nil, nil
		}
		touched, err := r.updateIfVersion(ctx, cur, expected)
		if err != nil || touched == nil {
			return touched, err
		}
		r.variants.replaceFor(p.ID, variants)
		return touched, nil
	}
	return repositories.WriteIfVersion(ctx, p, expected, r.get, replace)
}

type fakeVariantRepo struct {
	*memTable[*models.ProductVariant]
}

func newFakeVariantRepo() *fakeVariantRepo {
	return &fakeVariantRepo{newMemTable(func(v *models.ProductVariant) *models.ProductVariant { c := *v; return &c })}
}

func (r *fakeVariantRepo) replaceFor(productID uuid.UUID, variants []models.ProductVariant) {
	for _, v := range r.all() {
		if v.ProductID == productID {
			r.remove(v.ID)
		}
	}
	for i := range variants {
		r.put(&variants[i])
	}
}

func (r *fakeVariantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	return r.get(ctx, id)
}

func (r *fakeVariantRepo) ListByProductID(_ context.Context, productID uuid.UUID) ([]*models.ProductVariant, error) {
	var out []*models.ProductVariant
	for _, v := range r.all() {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeVariantRepo) UpdateIfVersion(ctx context.Context, v *models.ProductVariant, expected time.Time) (*models.ProductVariant, error) {
	return r.updateIfVersion(ctx, v, expected)
}

func (r *fakeVariantRepo) SaveIfVersion(ctx context.Context, v *models.ProductVariant, expected time.Time) (*models.ProductVariant, error) {
	return r.save(ctx, v, expected)
}

// ---------------------------------------------------------------------
// reviews, scheduled actions, settings
// ---------------------------------------------------------------------

type fakeReviewRepo struct {
	*memTable[*models.Review]
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{newMemTable(func(rv *models.Review) *models.Review { c := *rv; return &c })}
}

func (r *fakeReviewRepo) Create(_ context.Context, rv *models.Review) error {
	rv.UpdatedAt = r.put(rv).UpdatedAt
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return r.get(ctx, id)
}

func (r *fakeReviewRepo) ListByStatus(_ context.Context, status models.ReviewStatusType, limit int) ([]*models.Review, error) {
	var out []*models.Review
	for _, rv := range r.all() {
		if rv.Status == status && len(out) < limit {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) UpdateIfVersion(ctx context.Context, rv *models.Review, expected time.Time) (*models.Review, error) {
	return r.updateIfVersion(ctx, rv, expected)
}

func (r *fakeReviewRepo) SaveIfVersion(ctx context.Context, rv *models.Review, expected time.Time) (*models.Review, error) {
	return r.save(ctx, rv, expected)
}

func (r *fakeReviewRepo) BulkUpdateStatus(_ context.Context, ids []uuid.UUID, status models.ReviewStatusType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if rv, ok := r.rows[id]; ok {
			rv.Status = status
			rv.UpdatedAt = r.tick()
			n++
		}
	}
	return n, nil
}

func (r *fakeReviewRepo) BulkDelete(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeScheduledActionRepo struct {
	*memTable[*models.ScheduledAction]
}

func newFakeScheduledActionRepo() *fakeScheduledActionRepo {
	return &fakeScheduledActionRepo{newMemTable(func(a *models.ScheduledAction) *models.ScheduledAction { c := *a; return &c })}
}

func (r *fakeScheduledActionRepo) Create(_ context.Context, a *models.ScheduledAction) error {
	a.UpdatedAt = r.put(a).UpdatedAt
	return nil
}

func (r *fakeScheduledActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledAction, error) {
	return r.get(ctx, id)
}

func (r *fakeScheduledActionRepo) List(_ context.Context, status *models.ScheduledActionStatusType, limit int) ([]*models.ScheduledAction, error) {
	var out []*models.ScheduledAction
	for _, a := range r.all() {
		if status == nil || a.Status == *status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeScheduledActionRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledAction, error) {
	pending := models.ScheduledStatusPending
	all, _ := r.List(ctx, &pending, limit)
	var out []*models.ScheduledAction
	for _, a := range all {
		if !a.RunAt.After(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeScheduledActionRepo) ListStaleRunning(ctx context.Context, claimedBefore time.Time, limit int) ([]*models.ScheduledAction, error) {
	running := models.ScheduledStatusRunning
	all, _ := r.List(ctx, &running, limit)
	var out []*models.ScheduledAction
	for _, a := range all {
		if !a.UpdatedAt.After(claimedBefore) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeScheduledActionRepo) UpdateIfVersion(ctx context.Context, a *models.ScheduledAction, expected time.Time) (*models.ScheduledAction, error) {
	return r.updateIfVersion(ctx, a, expected)
}

func (r *fakeScheduledActionRepo) SaveIfVersion(ctx context.Context, a *models.ScheduledAction, expected time.Time) (*models.ScheduledAction, error) {
	return r.save(ctx, a, expected)
}

type fakeSettingsRepo struct {
	*memTable[*models.StoreSettings]
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{newMemTable(func(s *models.StoreSettings) *models.StoreSettings { c := *s; return &c })}
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*models.StoreSettings, error) {
	return r.get(ctx, models.StoreSettingsID)
}

func (r *fakeSettingsRepo) UpdateIfVersion(ctx context.Context, s *models.StoreSettings, expected time.Time) (*models.StoreSettings, error) {
	return r.updateIfVersion(ctx, s, expected)
}

func (r *fakeSettingsRepo) SaveIfVersion(ctx context.Context, s *models.StoreSettings, expected time.Time) (*models.StoreSettings, error) {
	return r.save(ctx, s, expected)
}

// ---------------------------------------------------------------------
// audit, mail, cache
// ---------------------------------------------------------------------

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AdminAuditLog
	fail    error
}

func (r *fakeAuditRepo) Create(_ context.Context, e *models.AdminAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, targetID *uuid.UUID, limit int) ([]*models.AdminAuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AdminAuditLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if targetID == nil || (e.TargetID != nil && *e.TargetID == *targetID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) snapshot() []*models.AdminAuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.AdminAuditLog(nil), r.entries...)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []*mail.SGMailV3
	fail error
}

func (m *fakeMailer) Send(_ context.Context, msg *mail.SGMailV3) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	items       map[uuid.UUID]*models.Product
	generations map[uuid.UUID]int
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[uuid.UUID]*models.Product{}, generations: map[uuid.UUID]int{}}
}

func (c *fakeCache) Get(_ context.Context, id uuid.UUID) (*models.Product, cache.Generation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	return p, cache.Generation(strconv.Itoa(c.generations[id])), ok
}

func (c *fakeCache) Set(_ context.Context, p *models.Product, gen cache.Generation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if string(gen) != strconv.Itoa(c.generations[p.ID]) {
		return
	}
	c.items[p.ID] = p
}

func (c *fakeCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.generations[id]++
	c.invalidated = append(c.invalidated, id)
}

func testConfig() *config.Config {
	return &config.Config{
		OrganizationName:         "mbeauty",
		AppName:                  "mbeauty-admin-service",
		LDFlag_SendOrderEmails:   true,
		LDFlag_SendgridFromEmail: "no-reply@mbeauty.example",
	}
}
