package seed

import "testing"

func TestLoadParsesEmbeddedDataset(t *testing.T) {
	data, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(data.Companies) == 0 {
		t.Fatal("seed companies must not be empty")
	}
	if len(data.Facilities) == 0 {
		t.Fatal("seed facilities must not be empty")
	}
	if len(data.PricingTiers) == 0 {
		t.Fatal("seed pricing tiers must not be empty")
	}
	if data.Homepage.HeroTitle == "" {
		t.Fatal("seed homepage must carry hero copy")
	}
}

func TestLoadIncludesAnUnlocatedCompany(t *testing.T) {
	data, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// The dataset deliberately carries one record without coordinates so
	// the transform's drop rule is exercised against fallback data too.
	var unlocated bool
	for _, c := range data.Companies {
		if c.Latitude == nil || c.Longitude == nil {
			unlocated = true
		}
	}
	if !unlocated {
		t.Fatal("expected at least one company without coordinates")
	}
}

func TestLoadReturnsIndependentSlices(t *testing.T) {
	first, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first.Companies[0].Name = "mutated"

	second, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if second.Companies[0].Name == "mutated" {
		t.Fatal("Load must return copies, not shared backing arrays")
	}
}
