package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestCompanyDropsMissingCoordinates(t *testing.T) {
	lat := 29.76
	cases := []company.Company{
		{ID: "1", Name: "No Coords"},
		{ID: "2", Name: "Lat Only", Latitude: &lat},
		{ID: "3", Name: "Lng Only", Longitude: &lat},
	}
	for _, c := range cases {
		if _, ok := Company(c); ok {
			t.Fatalf("company %s should be dropped", c.ID)
		}
	}
}

func TestCompanyDefaults(t *testing.T) {
	c := company.Company{
		ID:        "1",
		Name:      "Gulf Coast Hydrovac",
		City:      "Houston",
		State:     "Texas",
		Tier:      "Premium",
		Latitude:  floatPtr(29.76),
		Longitude: floatPtr(-95.37),
	}

	listing, ok := Company(c)
	require.True(t, ok)
	assert.Equal(t, company.TierPremium, listing.Tier)
	assert.Equal(t, company.DefaultCoverageRadius, listing.CoverageRadius)
	assert.Empty(t, listing.Specialties)
}

func TestCompanyExplicitRadius(t *testing.T) {
	c := company.Company{
		ID:             "1",
		Tier:           "verified",
		CoverageRadius: intPtr(50),
		Latitude:       floatPtr(29.76),
		Longitude:      floatPtr(-95.37),
	}

	listing, ok := Company(c)
	require.True(t, ok)
	assert.Equal(t, 50, listing.CoverageRadius)
}

func TestCompanyUnknownTierNormalizesToBasic(t *testing.T) {
	for _, raw := range []string{"", "Free", "GOLD", "  basic  "} {
		c := company.Company{
			Tier:      raw,
			Latitude:  floatPtr(29.76),
			Longitude: floatPtr(-95.37),
		}
		listing, ok := Company(c)
		require.True(t, ok)
		assert.Equal(t, company.TierBasic, listing.Tier, "raw tier %q", raw)
	}
}

func TestFacilityTransform(t *testing.T) {
	f := disposal.Facility{
		ID:                "9",
		Name:              "Houston Disposal",
		Address:           "123 Industrial Rd",
		City:              "Houston",
		State:             "Texas",
		MaterialsAccepted: "Drilling Mud, , Industrial Waste",
		Latitude:          floatPtr(29.80),
		Longitude:         floatPtr(-95.40),
	}

	listing, ok := Facility(f)
	require.True(t, ok)
	assert.Equal(t, disposal.Tier, listing.Tier)
	assert.Equal(t, []string{"Drilling Mud", "Industrial Waste"}, listing.MaterialsAccepted)

	if _, ok := Facility(disposal.Facility{ID: "10"}); ok {
		t.Fatal("facility without coordinates should be dropped")
	}
}

func TestSplitDelimited(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"Drilling Mud, , Industrial Waste", []string{"Drilling Mud", "Industrial Waste"}},
		{"", nil},
		{" , ,  ", nil},
		{"Hydro Excavation", []string{"Hydro Excavation"}},
		{"Potholing,Potholing, Daylighting", []string{"Potholing", "Daylighting"}},
		{"  Slot Trenching  ,  Debris Removal", []string{"Slot Trenching", "Debris Removal"}},
	}

	for _, tc := range cases {
		got := SplitDelimited(tc.raw)
		if tc.want == nil {
			assert.Empty(t, got, "raw %q", tc.raw)
			continue
		}
		assert.Equal(t, tc.want, got, "raw %q", tc.raw)
	}
}

func TestCompaniesBatchNeverEmitsNilCoordinates(t *testing.T) {
	records := []company.Company{
		{ID: "1", Latitude: floatPtr(29.76), Longitude: floatPtr(-95.37)},
		{ID: "2"},
		{ID: "3", Latitude: floatPtr(32.78), Longitude: floatPtr(-96.80)},
	}

	listings := Companies(records)
	require.Len(t, listings, 2)
	assert.Equal(t, "1", listings[0].ID)
	assert.Equal(t, "3", listings[1].ID)
}
