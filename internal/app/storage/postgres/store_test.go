package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/lib/pq"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/platform/migrations"
)

func floatPtr(f float64) *float64 { return &f }

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	created, err := store.CreateCompany(ctx, company.Company{
		Name: "Integration Hydro", City: "Houston", State: "Texas",
		Tier: "premium", Latitude: floatPtr(29.76), Longitude: floatPtr(-95.37),
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	defer store.DeleteCompany(ctx, created.ID)

	got, err := store.GetCompany(ctx, created.ID)
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if got.Name != created.Name || got.Latitude == nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.City = "Dallas"
	updated, err := store.UpdateCompany(ctx, got)
	if err != nil {
		t.Fatalf("update company: %v", err)
	}
	if updated.City != "Dallas" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.CreatedAt.Unix() != created.CreatedAt.Unix() {
		t.Fatalf("update must preserve createdAt: %v vs %v", updated.CreatedAt, created.CreatedAt)
	}

	facility, err := store.CreateFacility(ctx, disposal.Facility{
		Name: "Integration Disposal", City: "Houston", State: "Texas",
	})
	if err != nil {
		t.Fatalf("create facility: %v", err)
	}
	defer store.DeleteFacility(ctx, facility.ID)

	homepage, err := store.SaveHomepage(ctx, content.HomepageContent{HeroTitle: "Hello"})
	if err != nil {
		t.Fatalf("save homepage: %v", err)
	}
	again, err := store.SaveHomepage(ctx, content.HomepageContent{HeroTitle: "Hello again"})
	if err != nil {
		t.Fatalf("save homepage twice: %v", err)
	}
	if homepage.ID != again.ID {
		t.Fatalf("homepage must stay a singleton: %s vs %s", homepage.ID, again.ID)
	}

	if _, err := store.GetCompany(ctx, "does-not-exist"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
