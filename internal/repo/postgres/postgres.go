package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"servicepulse/internal/domain"
	"servicepulse/internal/repo"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ---- ServiceStore ----

func (s *Store) ListActive(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, name, base_url, COALESCE(health_check_path, ''), COALESCE(timeout_seconds, 0), active, created_at
  FROM services
 WHERE active
 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list active services: %w", err)
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var (
			svc     domain.Service
			id      string
			timeout int
		)
		if err := rows.Scan(&id, &svc.Name, &svc.BaseURL, &svc.HealthCheckPath, &timeout, &svc.Active, &svc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		svc.ID = domain.ServiceID(id)
		svc.Timeout = time.Duration(timeout) * time.Second
		out = append(out, svc)
	}
	return out, rows.Err()
}

// ---- StatusStore ----

func (s *Store) AppendStatus(ctx context.Context, r *domain.StatusRecord) error {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `
INSERT INTO status_records (service_id, status, response_time_ms, http_status, message, checked_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		string(r.ServiceID), string(r.Status), r.ResponseTimeMS, r.HTTPStatus, r.Message, r.CheckedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert status record: %w", err)
	}
	return nil
}

func (s *Store) LatestStatus(ctx context.Context, id domain.ServiceID) (*domain.StatusRecord, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, status, response_time_ms, http_status, COALESCE(message, ''), checked_at
  FROM status_records
 WHERE service_id = $1
 ORDER BY checked_at DESC, id DESC
 LIMIT 1`, string(id))

	r := domain.StatusRecord{ServiceID: id}
	var status string
	err := row.Scan(&r.ID, &status, &r.ResponseTimeMS, &r.HTTPStatus, &r.Message, &r.CheckedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest status: %w", err)
	}
	r.Status = domain.Status(status)
	return &r, nil
}

func (s *Store) LatestStatuses(ctx context.Context) ([]domain.StatusRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (service_id)
       id, service_id, status, response_time_ms, http_status, COALESCE(message, ''), checked_at
  FROM status_records
 ORDER BY service_id, checked_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest statuses: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusRecord
	for rows.Next() {
		var (
			r         domain.StatusRecord
			serviceID string
			status    string
		)
		if err := rows.Scan(&r.ID, &serviceID, &status, &r.ResponseTimeMS, &r.HTTPStatus, &r.Message, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		r.ServiceID = domain.ServiceID(serviceID)
		r.Status = domain.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- UserStore ----

func (s *Store) ListWithPreferences(ctx context.Context, roles []domain.Role) ([]repo.UserWithPreference, error) {
	roleStrs := make([]string, len(roles))
	for i, r := range roles {
		roleStrs[i] = string(r)
	}
	rows, err := s.pool.Query(ctx, `
SELECT u.id, u.name, u.email, u.role, u.active,
       p.user_id, p.email_enabled, p.status_change, p.online_to_offline,
       p.offline_to_online, p.error_alert, p.warning_alert, p.system_alert
  FROM users u
  LEFT JOIN notification_preferences p ON p.user_id = u.id
 WHERE u.active AND u.role = ANY($1)
 ORDER BY u.id`, roleStrs)
	if err != nil {
		return nil, fmt.Errorf("list users with preferences: %w", err)
	}
	defer rows.Close()

	var out []repo.UserWithPreference
	for rows.Next() {
		var (
			u          domain.User
			id, role   string
			prefUserID *string
			// LEFT JOIN: all preference columns are NULL when no record exists.
			emailEnabled, statusChange, onToOff, offToOn, errAlert, warnAlert, sysAlert *bool
		)
		if err := rows.Scan(&id, &u.Name, &u.Email, &role, &u.Active,
			&prefUserID, &emailEnabled, &statusChange, &onToOff,
			&offToOn, &errAlert, &warnAlert, &sysAlert); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ID = domain.UserID(id)
		u.Role = domain.Role(role)
		uwp := repo.UserWithPreference{User: u}
		if prefUserID != nil {
			uwp.Preference = &domain.NotificationPreference{
				UserID:          u.ID,
				EmailEnabled:    deref(emailEnabled),
				StatusChange:    deref(statusChange),
				OnlineToOffline: deref(onToOff),
				OfflineToOnline: deref(offToOn),
				ErrorAlert:      deref(errAlert),
				WarningAlert:    deref(warnAlert),
				SystemAlert:     deref(sysAlert),
			}
		}
		out = append(out, uwp)
	}
	return out, rows.Err()
}

func deref(b *bool) bool { return b != nil && *b }

// ---- NotificationStore ----

func (s *Store) InsertNotification(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	var serviceID *string
	if n.ServiceID != nil {
		v := string(*n.ServiceID)
		serviceID = &v
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO notifications (id, user_id, type, title, message, service_id, priority, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, string(n.UserID), n.Type, n.Title, n.Message, serviceID, string(n.Priority), n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
