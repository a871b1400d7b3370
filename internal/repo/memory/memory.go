package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"servicepulse/internal/domain"
	"servicepulse/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Store is the in-memory adapter used by tests and DB-less dev runs.
type Store struct {
	mu            sync.RWMutex
	services      map[domain.ServiceID]*domain.Service
	records       []*domain.StatusRecord
	users         map[domain.UserID]*domain.User
	prefs         map[domain.UserID]*domain.NotificationPreference
	notifications []*domain.Notification
	nextRecordID  int64
}

func New() *Store {
	return &Store{
		services: make(map[domain.ServiceID]*domain.Service),
		records:  make([]*domain.StatusRecord, 0, 128),
		users:    make(map[domain.UserID]*domain.User),
		prefs:    make(map[domain.UserID]*domain.NotificationPreference),
	}
}

func (m *Store) Ping(ctx context.Context) error { return nil }

// AddService seeds a service; management CRUD lives outside this core.
func (m *Store) AddService(s *domain.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = domain.ServiceID(uuid.NewString())
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.services[s.ID] = s
}

// AddUser seeds a user, optionally with a preference record.
func (m *Store) AddUser(u *domain.User, p *domain.NotificationPreference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = domain.UserID(uuid.NewString())
	}
	m.users[u.ID] = u
	if p != nil {
		p.UserID = u.ID
		m.prefs[u.ID] = p
	}
}

func (m *Store) ListActive(ctx context.Context) ([]domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Store) AppendStatus(ctx context.Context, r *domain.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRecordID++
	r.ID = m.nextRecordID
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	cp := *r
	m.records = append(m.records, &cp)
	return nil
}

func (m *Store) LatestStatus(ctx context.Context, id domain.ServiceID) (*domain.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.StatusRecord
	for _, r := range m.records {
		if r.ServiceID != id {
			continue
		}
		if latest == nil || r.CheckedAt.After(latest.CheckedAt) ||
			(r.CheckedAt.Equal(latest.CheckedAt) && r.ID > latest.ID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *Store) LatestStatuses(ctx context.Context) ([]domain.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	latest := make(map[domain.ServiceID]*domain.StatusRecord)
	for _, r := range m.records {
		cur := latest[r.ServiceID]
		if cur == nil || r.CheckedAt.After(cur.CheckedAt) ||
			(r.CheckedAt.Equal(cur.CheckedAt) && r.ID > cur.ID) {
			latest[r.ServiceID] = r
		}
	}
	out := make([]domain.StatusRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, *r)
	}
	return out, nil
}

func (m *Store) ListWithPreferences(ctx context.Context, roles []domain.Role) ([]repo.UserWithPreference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}
	out := make([]repo.UserWithPreference, 0, len(m.users))
	for _, u := range m.users {
		if !u.Active || !want[u.Role] {
			continue
		}
		uwp := repo.UserWithPreference{User: *u}
		if p, ok := m.prefs[u.ID]; ok {
			cp := *p
			uwp.Preference = &cp
		}
		out = append(out, uwp)
	}
	return out, nil
}

func (m *Store) InsertNotification(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

// Notifications returns a snapshot, for tests and the read API.
func (m *Store) Notifications() []domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, *n)
	}
	return out
}

// StatusRecords returns a snapshot of all appended records, for tests.
func (m *Store) StatusRecords() []domain.StatusRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.StatusRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, *r)
	}
	return out
}
