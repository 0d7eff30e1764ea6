// Package seed carries the embedded fallback dataset served when no
// datastore is configured or a read against it fails. The dataset is shaped
// identically to live store responses so browse views degrade gracefully
// instead of rendering blank.
package seed

import (
	"encoding/json"
	"fmt"
	"sync"

	_ "embed"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
)

//go:embed dataset.json
var raw []byte

// Dataset is the full embedded fallback payload.
type Dataset struct {
	Companies    []company.Company          `json:"companies"`
	Facilities   []disposal.Facility        `json:"facilities"`
	PricingTiers []content.PricingTier      `json:"pricingTiers"`
	StatePages   []content.StateLandingPage `json:"statePages"`
	Homepage     content.HomepageContent    `json:"homepage"`
}

var (
	once    sync.Once
	dataset Dataset
	loadErr error
)

// Load parses the embedded dataset once and returns a copy of the top-level
// slices so callers can mutate results freely.
func Load() (Dataset, error) {
	once.Do(func() {
		loadErr = json.Unmarshal(raw, &dataset)
		if loadErr != nil {
			loadErr = fmt.Errorf("parse embedded seed dataset: %w", loadErr)
		}
	})
	if loadErr != nil {
		return Dataset{}, loadErr
	}

	out := dataset
	out.Companies = append([]company.Company(nil), dataset.Companies...)
	out.Facilities = append([]disposal.Facility(nil), dataset.Facilities...)
	out.PricingTiers = append([]content.PricingTier(nil), dataset.PricingTiers...)
	out.StatePages = append([]content.StateLandingPage(nil), dataset.StatePages...)
	return out, nil
}
