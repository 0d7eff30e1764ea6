package disposals

import (
	"context"
	"errors"
	"testing"

	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/app/storage"
)

func floatPtr(f float64) *float64 { return &f }

// failingStore simulates a reachable but broken datastore.
type failingStore struct{}

var errStoreDown = errors.New("connection refused")

func (failingStore) CreateFacility(context.Context, disposal.Facility) (disposal.Facility, error) {
	return disposal.Facility{}, errStoreDown
}

func (failingStore) UpdateFacility(context.Context, disposal.Facility) (disposal.Facility, error) {
	return disposal.Facility{}, errStoreDown
}

func (failingStore) GetFacility(context.Context, string) (disposal.Facility, error) {
	return disposal.Facility{}, errStoreDown
}

func (failingStore) ListFacilities(context.Context) ([]disposal.Facility, error) {
	return nil, errStoreDown
}

func (failingStore) DeleteFacility(context.Context, string) error {
	return errStoreDown
}

func TestListDropsFacilitiesWithoutCoordinates(t *testing.T) {
	store := storage.NewMemory()
	svc := New(store, nil, nil)
	ctx := context.Background()

	located := disposal.Facility{
		Name: "Houston Disposal", City: "Houston", State: "Texas",
		Latitude: floatPtr(29.73), Longitude: floatPtr(-95.28),
	}
	unlocated := disposal.Facility{Name: "Pending Site", City: "Austin", State: "Texas"}

	if _, err := svc.Create(ctx, located); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, unlocated); err != nil {
		t.Fatalf("create: %v", err)
	}

	listings, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Tier != disposal.Tier {
		t.Fatalf("facilities carry the fixed %q tier, got %q", disposal.Tier, listings[0].Tier)
	}
}

func TestListWithoutStoreServesSeedDataset(t *testing.T) {
	svc := New(nil, nil, nil)

	listings, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) == 0 {
		t.Fatal("fallback dataset must not be empty")
	}
}

func TestWritesRequireStore(t *testing.T) {
	svc := New(nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, disposal.Facility{Name: "X", City: "Y", State: "Z"}); !errors.Is(err, errs.ErrNotConfigured) {
		t.Fatalf("create: expected not configured, got %v", err)
	}
	if err := svc.Delete(ctx, "any"); !errors.Is(err, errs.ErrNotConfigured) {
		t.Fatalf("delete: expected not configured, got %v", err)
	}
}

func TestGetFallsBackToSeedOnStoreError(t *testing.T) {
	svc := New(failingStore{}, nil, nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, "seed-df-1")
	if err != nil {
		t.Fatalf("get must recover via the fallback dataset: %v", err)
	}
	if got.Name == "" {
		t.Fatal("expected a seed record, got an empty facility")
	}

	if _, err := svc.Get(ctx, "no-such-id"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestGetMissingRecordStaysNotFound(t *testing.T) {
	svc := New(storage.NewMemory(), nil, nil)

	if _, err := svc.Get(context.Background(), "seed-df-1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportSeedIsIdempotent(t *testing.T) {
	store := storage.NewMemory()
	svc := New(store, nil, nil)
	ctx := context.Background()

	first, err := svc.ImportSeed(ctx)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if first.Imported == 0 {
		t.Fatal("first import must create records")
	}

	second, err := svc.ImportSeed(ctx)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if second.Imported != 0 {
		t.Fatalf("re-import must not duplicate records, created %d", second.Imported)
	}
	if second.Skipped != first.Imported {
		t.Fatalf("expected %d records skipped, got %d", first.Imported, second.Skipped)
	}
}

func TestCreateValidatesPairedCoordinates(t *testing.T) {
	svc := New(storage.NewMemory(), nil, nil)

	_, err := svc.Create(context.Background(), disposal.Facility{
		Name: "X", City: "Y", State: "Z", Latitude: floatPtr(29.7),
	})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["coordinates"]; !ok {
		t.Fatalf("expected coordinates message, got %#v", verr.Fields)
	}
}
