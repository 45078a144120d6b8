package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/grant"
	"github.com/geocoder89/healthvault/internal/domain/report"
	"github.com/geocoder89/healthvault/internal/domain/user"
	"github.com/geocoder89/healthvault/internal/domain/vital"
)

func TestUsersRepoRejectsDuplicateEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, "Alice", "alice@example.com", "hash", user.RoleOwner); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := repo.Create(ctx, "Alice Again", "ALICE@example.com", "hash2", user.RoleOwner)

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken (case-insensitive)", err)
	}
}

func TestUsersRepoLookups(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, "Alice", "alice@example.com", "hash", user.RoleOwner)

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")

	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: %v %+v", err, byEmail)
	}

	byID, err := repo.GetByID(ctx, u.ID)

	if err != nil || byID.Email != u.Email {
		t.Fatalf("GetByID: %v %+v", err, byID)
	}

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReportsRepoPreservesInsertionOrder(t *testing.T) {
	repo := NewReportsRepo()
	ctx := context.Background()

	var ids []string

	for _, title := range []string{"first", "second", "third"} {
		rep, err := repo.Create(ctx, report.CreateReportRequest{
			OwnerID: "alice",
			Title:   title,
		})

		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		ids = append(ids, rep.ID)
	}

	listed, err := repo.ListByOwner(ctx, "alice")

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	for i, rep := range listed {
		if rep.ID != ids[i] {
			t.Fatalf("position %d = %s, want %s", i, rep.ID, ids[i])
		}
	}

	// ListByIDs also walks insertion order, regardless of argument order
	subset, err := repo.ListByIDs(ctx, []string{ids[2], ids[0]})

	if err != nil {
		t.Fatalf("list by ids failed: %v", err)
	}

	if len(subset) != 2 || subset[0].ID != ids[0] || subset[1].ID != ids[2] {
		t.Fatalf("wrong subset order: %+v", subset)
	}
}

func TestGrantsRepoDedupes(t *testing.T) {
	repo := NewGrantsRepo()
	ctx := context.Background()

	first, err := repo.Create(ctx, grant.New("r1", "alice", "bob"))

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second, err := repo.Create(ctx, grant.New("r1", "alice", "bob"))

	if err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("duplicate grant created a new row: %s vs %s", second.ID, first.ID)
	}

	grants, err := repo.ListByViewer(ctx, "bob")

	if err != nil || len(grants) != 1 {
		t.Fatalf("ListByViewer: %v, %d grants", err, len(grants))
	}

	if _, err := repo.FindByReportAndViewer(ctx, "r1", "carol"); !errors.Is(err, grant.ErrNotFound) {
		t.Fatalf("got %v, want grant.ErrNotFound", err)
	}
}

func TestVitalsRepoSortsByDate(t *testing.T) {
	repo := NewVitalsRepo()
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}

	for _, d := range []int{3, 1, 2} {
		if _, err := repo.Create(ctx, vital.CreateVitalRequest{
			UserID: "alice",
			Kind:   vital.KindHeartRate,
			Value:  70,
			Date:   day(d),
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	listed, err := repo.ListByUser(ctx, "alice")

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(listed) != 3 {
		t.Fatalf("got %d records, want 3", len(listed))
	}

	for i := 1; i < len(listed); i++ {
		if listed[i].Date.Before(listed[i-1].Date) {
			t.Fatalf("records not chronological: %v then %v", listed[i-1].Date, listed[i].Date)
		}
	}
}
