package scheduler

import (
	"context"
	"fmt"

	"servicepulse/internal/domain"
	"servicepulse/internal/repo"
)

// notifyTable holds the directional transitions that trigger the full
// dispatch path. Anything outside it that still changed is a generic
// status change, visible in logs and broadcasts only.
var notifyTable = map[domain.Status]map[domain.Status]bool{
	domain.StatusOnline: {
		domain.StatusOffline: true,
		domain.StatusError:   true,
		domain.StatusWarning: true,
	},
	domain.StatusWarning: {
		domain.StatusOffline: true,
		domain.StatusError:   true,
	},
	domain.StatusOffline: {
		domain.StatusOnline:  true,
		domain.StatusWarning: true,
	},
	domain.StatusError: {
		domain.StatusOnline:  true,
		domain.StatusWarning: true,
	},
}

// Detector compares a freshly written record against the prior one.
// The prior status is always read from storage, never cached, so concurrent
// writers (or records injected by the admin side) are observed.
type Detector struct {
	statuses repo.StatusStore
}

func NewDetector(statuses repo.StatusStore) *Detector {
	return &Detector{statuses: statuses}
}

// PriorStatus reads the current record for a service, for callers that need
// the snapshot before appending the new one.
func (d *Detector) PriorStatus(ctx context.Context, id domain.ServiceID) (*domain.StatusRecord, error) {
	prev, err := d.statuses.LatestStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("latest status for %s: %w", id, err)
	}
	return prev, nil
}

// Detect classifies rec against prev, where prev is the record that was
// current before rec was appended (nil on a first-ever check).
func (d *Detector) Detect(svc domain.Service, prev *domain.StatusRecord, rec domain.StatusRecord) domain.Transition {
	old := domain.StatusUnknown
	if prev != nil {
		old = prev.Status
	}

	tr := domain.Transition{
		Service: svc,
		Record:  rec,
		Old:     old,
		New:     rec.Status,
		Changed: old != rec.Status,
	}
	if !tr.Changed {
		return tr
	}

	if prev == nil {
		// First-ever check pages only when the service is not healthy out
		// of the gate.
		tr.Notify = rec.Status != domain.StatusOnline
	} else {
		tr.Notify = notifyTable[old][rec.Status]
	}
	tr.Category = classify(old, rec.Status)
	return tr
}

// classify picks the category. Direction is checked before the per-status
// alert buckets so a healthy→down transition reads as a degradation even
// when the new status is ERROR or WARNING.
func classify(old, new domain.Status) domain.Category {
	switch {
	case old.IsHealthy() && new.IsDown():
		return domain.CategoryDegradation
	case old.IsDown() && new == domain.StatusOnline:
		return domain.CategoryRecovery
	case new == domain.StatusError:
		return domain.CategoryErrorAlert
	case new == domain.StatusWarning:
		return domain.CategoryWarningAlert
	default:
		return domain.CategoryStatusChange
	}
}
