package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/neomorfeo/bazaar/internal/adapter/sqlite"
	"github.com/neomorfeo/bazaar/internal/domain"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateCategory(t *testing.T, store *sqlite.Store, id, name string, order int) domain.Category {
	t.Helper()
	c := domain.Category{ID: id, Name: name, DisplayOrder: order, CreatedAt: time.Now()}
	if err := store.Categories().Create(context.Background(), c); err != nil {
		t.Fatalf("mustCreateCategory failed: %v", err)
	}
	return c
}

func mustCreateAdmin(t *testing.T, store *sqlite.Store, id string) domain.Admin {
	t.Helper()
	a := domain.Admin{ID: id, Email: id + "@example.com", PasswordHash: "x", Name: id, CreatedAt: time.Now()}
	if err := store.Admins().Create(context.Background(), a); err != nil {
		t.Fatalf("mustCreateAdmin failed: %v", err)
	}
	return a
}

func mustCreateVendor(t *testing.T, store *sqlite.Store, v domain.Vendor) {
	t.Helper()
	if err := store.Vendors().Create(context.Background(), v); err != nil {
		t.Fatalf("mustCreateVendor failed: %v", err)
	}
}

func TestVendor_CreateAndGetByID(t *testing.T) {
	store := newTestStore(t)
	music := mustCreateCategory(t, store, "c-2", "Music", 2)
	catering := mustCreateCategory(t, store, "c-1", "Catering", 1)

	vendor := domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", []domain.Category{music, catering})
	mustCreateVendor(t, store, vendor)

	got, err := store.Vendors().GetByID(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.Name != "Blue Fork" {
		t.Errorf("Name = %q, want %q", got.Name, "Blue Fork")
	}
	if got.Status != domain.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusPending)
	}
	if got.ApprovedAt != nil || got.ApprovedByID != nil {
		t.Error("new vendor should have no approval attribution")
	}
	if len(got.Categories) != 2 || got.Categories[0].Name != "Catering" || got.Categories[1].Name != "Music" {
		t.Errorf("Categories = %+v, want [Catering Music]", got.Categories)
	}
	if got.Profile.Present() {
		t.Error("vendor without profiles should have no default profile")
	}
	if !got.CreatedAt.Equal(vendor.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, vendor.CreatedAt)
	}
}

func TestVendor_GetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Vendors().GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestVendor_CreateUnknownCategoryRollsBack(t *testing.T) {
	store := newTestStore(t)

	vendor := domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", []domain.Category{{ID: "ghost"}})
	if err := store.Vendors().Create(context.Background(), vendor); err == nil {
		t.Fatal("expected foreign key failure")
	}

	if _, err := store.Vendors().GetByID(context.Background(), "v-1"); !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("vendor should not exist after rollback, got %v", err)
	}
}

func TestVendor_DefaultProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", nil))

	profiles := []domain.Profile{
		{ID: "p-1", VendorID: "v-1", Headline: "Old", IsDefault: true},
		{ID: "p-2", VendorID: "v-1", Headline: "Alternate"},
		{ID: "p-3", VendorID: "v-1", Headline: "Current", City: "Lisbon", IsDefault: true},
	}
	for _, p := range profiles {
		if err := store.Vendors().AddProfile(ctx, p); err != nil {
			t.Fatalf("AddProfile(%s) failed: %v", p.ID, err)
		}
	}

	got, err := store.Vendors().GetByID(ctx, "v-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	profile, ok := got.Profile.Get()
	if !ok {
		t.Fatal("expected a default profile")
	}
	if profile.ID != "p-3" || profile.City != "Lisbon" || !profile.IsDefault {
		t.Errorf("profile = %+v, want p-3 in Lisbon", profile)
	}
}

func TestVendor_AddProfile_UnknownVendor(t *testing.T) {
	store := newTestStore(t)

	err := store.Vendors().AddProfile(context.Background(), domain.Profile{ID: "p-1", VendorID: "ghost", Headline: "x"})
	if !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestVendor_UpdateStatus_Approve(t *testing.T) {
	store := newTestStore(t)
	mustCreateAdmin(t, store, "a1")
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", nil))

	at := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)
	got, err := store.Vendors().UpdateStatus(context.Background(), domain.StatusChange{
		VendorID: "v-1",
		Status:   domain.StatusApproved,
		Approval: &domain.Approval{At: at, ByID: "a1"},
	})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	if got.Status != domain.StatusApproved {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusApproved)
	}
	if got.ApprovedAt == nil || !got.ApprovedAt.Equal(at) {
		t.Errorf("ApprovedAt = %v, want %v", got.ApprovedAt, at)
	}
	if got.ApprovedByID == nil || *got.ApprovedByID != "a1" {
		t.Errorf("ApprovedByID = %v, want a1", got.ApprovedByID)
	}
}

func TestVendor_UpdateStatus_SuspendKeepsAttribution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreateAdmin(t, store, "a1")
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", nil))

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if _, err := store.Vendors().UpdateStatus(ctx, domain.StatusChange{
		VendorID: "v-1", Status: domain.StatusApproved, Approval: &domain.Approval{At: at, ByID: "a1"},
	}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	got, err := store.Vendors().UpdateStatus(ctx, domain.StatusChange{VendorID: "v-1", Status: domain.StatusSuspended})
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if got.Status != domain.StatusSuspended {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusSuspended)
	}
	if got.ApprovedByID == nil || *got.ApprovedByID != "a1" {
		t.Errorf("ApprovedByID = %v, want a1", got.ApprovedByID)
	}
	if got.ApprovedAt == nil || !got.ApprovedAt.Equal(at) {
		t.Errorf("ApprovedAt = %v, want %v", got.ApprovedAt, at)
	}
}

func TestVendor_UpdateStatus_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Vendors().UpdateStatus(context.Background(), domain.StatusChange{VendorID: "ghost", Status: domain.StatusSuspended})
	if !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestVendor_UpdateStatus_RejectsPartialApproval(t *testing.T) {
	store := newTestStore(t)
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", nil))

	_, err := store.Vendors().UpdateStatus(context.Background(), domain.StatusChange{VendorID: "v-1", Status: domain.StatusApproved})
	var invalid *domain.InvalidStatusChangeError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStatusChangeError, got %v", err)
	}

	got, _ := store.Vendors().GetByID(context.Background(), "v-1")
	if got.Status != domain.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusPending)
	}
}

func TestVendor_UpdateStatus_UnknownApproverFails(t *testing.T) {
	store := newTestStore(t)
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", nil))

	_, err := store.Vendors().UpdateStatus(context.Background(), domain.StatusChange{
		VendorID: "v-1", Status: domain.StatusApproved, Approval: &domain.Approval{At: time.Now(), ByID: "ghost"},
	})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}

	got, _ := store.Vendors().GetByID(context.Background(), "v-1")
	if got.Status != domain.StatusPending || got.ApprovedAt != nil {
		t.Errorf("vendor changed after failed update: %+v", got)
	}
}

func TestVendor_ConcurrentTransitionsStayConsistent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreateAdmin(t, store, "a1")
	mustCreateAdmin(t, store, "a2")
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Blue Fork", "hello@bluefork.test", nil))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			change := domain.StatusChange{VendorID: "v-1", Status: domain.StatusSuspended}
			if i%2 == 0 {
				change = domain.StatusChange{
					VendorID: "v-1",
					Status:   domain.StatusApproved,
					Approval: &domain.Approval{At: time.Now(), ByID: fmt.Sprintf("a%d", i%4/2+1)},
				}
			}
			if _, err := store.Vendors().UpdateStatus(ctx, change); err != nil {
				t.Errorf("UpdateStatus failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Vendors().GetByID(ctx, "v-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if (got.ApprovedAt == nil) != (got.ApprovedByID == nil) {
		t.Errorf("approval columns out of sync: at=%v by=%v", got.ApprovedAt, got.ApprovedByID)
	}
	if got.ApprovedAt == nil {
		t.Error("at least one approval ran, attribution should be set")
	}
}

func TestVendor_ListFilterByStatusNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreateAdmin(t, store, "a1")
	catering := mustCreateCategory(t, store, "c-1", "Catering", 1)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"v-old", "v-mid", "v-new", "v-approved", "v-suspended"} {
		v := domain.NewVendor(id, id, id+"@example.com", []domain.Category{catering})
		v.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		v.UpdatedAt = v.CreatedAt
		mustCreateVendor(t, store, v)
	}
	if _, err := store.Vendors().UpdateStatus(ctx, domain.StatusChange{
		VendorID: "v-approved", Status: domain.StatusApproved, Approval: &domain.Approval{At: base, ByID: "a1"},
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := store.Vendors().UpdateStatus(ctx, domain.StatusChange{VendorID: "v-suspended", Status: domain.StatusSuspended}); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if err := store.Vendors().AddProfile(ctx, domain.Profile{ID: "p-1", VendorID: "v-mid", Headline: "Mid", IsDefault: true}); err != nil {
		t.Fatalf("add profile: %v", err)
	}

	pending := domain.StatusPending
	vendors, err := store.Vendors().List(ctx, domain.ListFilter{Status: &pending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"v-new", "v-mid", "v-old"}
	if len(vendors) != len(want) {
		t.Fatalf("got %d vendors, want %d", len(vendors), len(want))
	}
	for i, id := range want {
		if vendors[i].ID != id {
			t.Errorf("vendors[%d] = %q, want %q", i, vendors[i].ID, id)
		}
		if vendors[i].Status != domain.StatusPending {
			t.Errorf("vendors[%d].Status = %q", i, vendors[i].Status)
		}
		if len(vendors[i].Categories) != 1 {
			t.Errorf("vendors[%d] has %d categories, want 1", i, len(vendors[i].Categories))
		}
	}
	if !vendors[1].Profile.Present() {
		t.Error("v-mid should carry its default profile")
	}
	if vendors[0].Profile.Present() || vendors[2].Profile.Present() {
		t.Error("vendors without profiles should have none")
	}
}

func TestVendor_ListPagination(t *testing.T) {
	store := newTestStore(t)

	for i := range 5 {
		mustCreateVendor(t, store, domain.NewVendor(fmt.Sprintf("v-%d", i), "V", "v@example.com", nil))
	}

	vendors, err := store.Vendors().List(context.Background(), domain.ListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(vendors) != 2 {
		t.Errorf("got %d vendors, want 2", len(vendors))
	}

	vendors, err = store.Vendors().List(context.Background(), domain.ListFilter{Offset: 3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(vendors) != 2 {
		t.Errorf("got %d vendors, want 2", len(vendors))
	}
}

func TestCategory_ListOrdered(t *testing.T) {
	store := newTestStore(t)
	mustCreateCategory(t, store, "c-3", "Venues", 3)
	mustCreateCategory(t, store, "c-1", "Catering", 1)
	mustCreateCategory(t, store, "c-2", "Music", 2)

	for range 2 {
		cats, err := store.Categories().List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		want := []string{"Catering", "Music", "Venues"}
		if len(cats) != len(want) {
			t.Fatalf("got %d categories, want %d", len(cats), len(want))
		}
		for i, name := range want {
			if cats[i].Name != name {
				t.Errorf("cats[%d] = %q, want %q", i, cats[i].Name, name)
			}
		}
	}
}

func TestCategory_ListEmpty(t *testing.T) {
	store := newTestStore(t)

	cats, err := store.Categories().List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if cats == nil || len(cats) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", cats)
	}
}

func TestCategory_DuplicateName(t *testing.T) {
	store := newTestStore(t)
	mustCreateCategory(t, store, "c-1", "Catering", 1)

	err := store.Categories().Create(context.Background(), domain.Category{ID: "c-2", Name: "Catering", DisplayOrder: 2})
	var conflict *domain.CategoryConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected CategoryConflictError, got %v", err)
	}
}

func TestAdmin_CreateAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	admin := mustCreateAdmin(t, store, "a1")

	byEmail, err := store.Admins().GetByEmail(ctx, admin.Email)
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.ID != "a1" {
		t.Errorf("ID = %q, want %q", byEmail.ID, "a1")
	}

	byID, err := store.Admins().GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Email != admin.Email {
		t.Errorf("Email = %q, want %q", byID.Email, admin.Email)
	}

	if _, err := store.Admins().GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, domain.ErrAdminNotFound) {
		t.Errorf("expected ErrAdminNotFound, got %v", err)
	}
}

func TestAdmin_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	admin := mustCreateAdmin(t, store, "a1")

	admin.ID = "a2"
	err := store.Admins().Create(context.Background(), admin)
	var conflict *domain.EmailConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EmailConflictError, got %v", err)
	}
}

func TestVendor_ListEnrichesBeyondParameterLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	catering := mustCreateCategory(t, store, "c-1", "Catering", 1)

	// More pending vendors than SQLite accepts host parameters in one statement.
	const n = 33000
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tx, err := store.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vendors (id, name, email, status, created_at, updated_at) VALUES (?, ?, ?, 'pending', ?, ?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for i := range n {
		id := fmt.Sprintf("v-%05d", i)
		ts := base.Add(time.Duration(i) * time.Millisecond).Format("2006-01-02T15:04:05.000000000Z")
		if _, err := stmt.ExecContext(ctx, id, id, id+"@example.com", ts, ts); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// v-00000 is the oldest, so it lands in the final enrichment batch.
	if _, err := store.DB().ExecContext(ctx,
		`INSERT INTO vendor_categories (vendor_id, category_id) VALUES ('v-00000', ?)`, catering.ID); err != nil {
		t.Fatalf("link category: %v", err)
	}
	if err := store.Vendors().AddProfile(ctx, domain.Profile{ID: "p-1", VendorID: "v-00000", Headline: "Oldest", IsDefault: true}); err != nil {
		t.Fatalf("add profile: %v", err)
	}

	pending := domain.StatusPending
	vendors, err := store.Vendors().List(ctx, domain.ListFilter{Status: &pending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(vendors) != n {
		t.Fatalf("got %d vendors, want %d", len(vendors), n)
	}

	oldest := vendors[n-1]
	if oldest.ID != "v-00000" {
		t.Fatalf("last vendor = %q, want %q", oldest.ID, "v-00000")
	}
	if len(oldest.Categories) != 1 || oldest.Categories[0].ID != catering.ID {
		t.Errorf("oldest categories = %+v, want [%s]", oldest.Categories, catering.ID)
	}
	if p, ok := oldest.Profile.Get(); !ok || p.Headline != "Oldest" {
		t.Errorf("oldest profile = %+v, want default profile", oldest.Profile)
	}
	if vendors[0].Profile.Present() || len(vendors[0].Categories) != 0 {
		t.Errorf("newest vendor should have no profile or categories, got %+v", vendors[0])
	}
}

func TestStore_MalformedTimestampsSurface(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreateAdmin(t, store, "a1")
	mustCreateCategory(t, store, "c-1", "Catering", 1)
	mustCreateVendor(t, store, domain.NewVendor("v-1", "Acme", "hi@acme.test", nil))

	for _, stmt := range []string{
		`UPDATE vendors SET created_at = 'yesterday' WHERE id = 'v-1'`,
		`UPDATE categories SET created_at = 'yesterday' WHERE id = 'c-1'`,
		`UPDATE admins SET created_at = 'yesterday' WHERE id = 'a1'`,
	} {
		if _, err := store.DB().ExecContext(ctx, stmt); err != nil {
			t.Fatalf("corrupting row: %v", err)
		}
	}

	if _, err := store.Vendors().GetByID(ctx, "v-1"); err == nil {
		t.Error("GetByID: expected error for malformed created_at")
	}
	pending := domain.StatusPending
	if _, err := store.Vendors().List(ctx, domain.ListFilter{Status: &pending}); err == nil {
		t.Error("List: expected error for malformed created_at")
	}
	if _, err := store.Categories().List(ctx); err == nil {
		t.Error("Categories.List: expected error for malformed created_at")
	}
	if _, err := store.Admins().GetByID(ctx, "a1"); err == nil {
		t.Error("Admins.GetByID: expected error for malformed created_at")
	}
}
