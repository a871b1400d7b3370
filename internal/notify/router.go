package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"servicepulse/internal/domain"
	"servicepulse/internal/repo"
)

// Router resolves which users should hear about a transition category.
// Guests never receive proactive notifications; admins and power users are
// the candidate pool.
type Router struct {
	users  repo.UserStore
	logger *zap.Logger
}

func NewRouter(users repo.UserStore, logger *zap.Logger) *Router {
	return &Router{users: users, logger: logger}
}

// Resolve returns the recipients for a category. An empty list is a valid,
// silent outcome.
func (r *Router) Resolve(ctx context.Context, category domain.Category) ([]domain.User, error) {
	candidates, err := r.users.ListWithPreferences(ctx, []domain.Role{domain.RoleAdmin, domain.RoleUser})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	var out []domain.User
	for _, c := range candidates {
		if wantsCategory(c, category) {
			out = append(out, c.User)
		}
	}
	if len(out) == 0 {
		r.logger.Debug("no_recipients", zap.String("category", string(category)))
	}
	return out, nil
}

// wantsCategory applies the preference rules: with no record, admins get
// everything and power users nothing; with a record, the email channel must
// be on and the category flag set.
func wantsCategory(c repo.UserWithPreference, category domain.Category) bool {
	p := c.Preference
	if p == nil {
		return c.User.Role == domain.RoleAdmin
	}
	if !p.EmailEnabled {
		return false
	}
	switch category {
	case domain.CategoryDegradation:
		return p.OnlineToOffline
	case domain.CategoryRecovery:
		return p.OfflineToOnline
	case domain.CategoryErrorAlert:
		return p.ErrorAlert
	case domain.CategoryWarningAlert:
		return p.WarningAlert
	case domain.CategorySystemAlert:
		return p.SystemAlert
	case domain.CategoryStatusChange:
		return p.StatusChange
	default:
		return false
	}
}
