package memory

import (
	"context"
	"testing"
	"time"

	"servicepulse/internal/domain"
)

func TestMemoryStore_ListActiveFiltersInactive(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddService(&domain.Service{Name: "a", BaseURL: "https://a.example", Active: true})
	s.AddService(&domain.Service{Name: "b", BaseURL: "https://b.example", Active: false})

	got, err := s.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("expected only active service, got %+v", got)
	}
}

func TestMemoryStore_LatestStatusPicksNewest(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := domain.ServiceID("S1")

	t0 := time.Now().UTC().Add(-time.Minute)
	for i, st := range []domain.Status{domain.StatusOnline, domain.StatusOffline, domain.StatusOnline} {
		if err := s.AppendStatus(ctx, &domain.StatusRecord{
			ServiceID: id,
			Status:    st,
			CheckedAt: t0.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("AppendStatus: %v", err)
		}
	}

	got, err := s.LatestStatus(ctx, id)
	if err != nil {
		t.Fatalf("LatestStatus: %v", err)
	}
	if got == nil || got.Status != domain.StatusOnline || got.ID != 3 {
		t.Fatalf("expected newest record, got %+v", got)
	}
}

func TestMemoryStore_LatestStatusNilWhenEmpty(t *testing.T) {
	s := New()
	got, err := s.LatestStatus(context.Background(), domain.ServiceID("missing"))
	if err != nil {
		t.Fatalf("LatestStatus: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown service, got %+v", got)
	}
}

func TestMemoryStore_ListWithPreferences(t *testing.T) {
	s := New()
	s.AddUser(&domain.User{Name: "admin", Email: "a@x", Role: domain.RoleAdmin, Active: true}, nil)
	s.AddUser(&domain.User{Name: "power", Email: "p@x", Role: domain.RoleUser, Active: true},
		&domain.NotificationPreference{EmailEnabled: true, OnlineToOffline: true})
	s.AddUser(&domain.User{Name: "guest", Email: "g@x", Role: domain.RoleGuest, Active: true}, nil)
	s.AddUser(&domain.User{Name: "gone", Email: "x@x", Role: domain.RoleAdmin, Active: false}, nil)

	got, err := s.ListWithPreferences(context.Background(), []domain.Role{domain.RoleAdmin, domain.RoleUser})
	if err != nil {
		t.Fatalf("ListWithPreferences: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected admin+power, got %+v", got)
	}
	for _, uwp := range got {
		switch uwp.User.Name {
		case "admin":
			if uwp.Preference != nil {
				t.Fatalf("admin should have no preference record")
			}
		case "power":
			if uwp.Preference == nil || !uwp.Preference.OnlineToOffline {
				t.Fatalf("power user preference missing: %+v", uwp.Preference)
			}
		default:
			t.Fatalf("unexpected user %q in result", uwp.User.Name)
		}
	}
}

func TestMemoryStore_InsertNotificationAssignsID(t *testing.T) {
	s := New()
	n := &domain.Notification{UserID: "U1", Type: "status_change", Title: "t", Message: "m"}
	if err := s.InsertNotification(context.Background(), n); err != nil {
		t.Fatalf("InsertNotification: %v", err)
	}
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at set: %+v", n)
	}
	if len(s.Notifications()) != 1 {
		t.Fatalf("expected one stored notification")
	}
}
