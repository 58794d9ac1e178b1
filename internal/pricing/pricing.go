package pricing

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnknownBundle is returned when a bundle id is not in the catalog.
var ErrUnknownBundle = errors.New("unknown bundle")

// bundleAmounts maps bundle id to price in pesewas. The catalog is the single
// source of truth for both payment initialization and the /api/bundles
// listing; it is never mutated at runtime.
var bundleAmounts = map[string]int64{
	// MTN
	"MTN-1GB":  530,
	"MTN-2GB":  1050,
	"MTN-3GB":  1540,
	"MTN-4GB":  2030,
	"MTN-5GB":  2520,
	"MTN-6GB":  3010,
	"MTN-7GB":  3500,
	"MTN-8GB":  3990,
	"MTN-9GB":  4480,
	"MTN-10GB": 4970,
	"MTN-11GB": 5460,
	"MTN-12GB": 5950,
	"MTN-13GB": 6440,
	"MTN-14GB": 6930,
	"MTN-15GB": 7420,
	"MTN-16GB": 7910,
	"MTN-17GB": 8400,
	"MTN-18GB": 8890,
	"MTN-19GB": 9380,
	"MTN-20GB": 9870,
	"MTN-21GB": 10360,
	"MTN-22GB": 10850,
	"MTN-23GB": 11340,
	"MTN-24GB": 11830,
	"MTN-25GB": 12320,
	"MTN-26GB": 12810,
	"MTN-27GB": 13300,
	"MTN-28GB": 13790,
	"MTN-29GB": 14280,
	"MTN-30GB": 14770,

	// TIGO iShare
	"TIGO-1GB":  500,
	"TIGO-2GB":  1000,
	"TIGO-3GB":  1500,
	"TIGO-4GB":  2000,
	"TIGO-5GB":  2500,
	"TIGO-6GB":  3000,
	"TIGO-7GB":  3500,
	"TIGO-8GB":  3900,
	"TIGO-9GB":  4400,
	"TIGO-10GB": 4900,
	"TIGO-11GB": 5400,
	"TIGO-12GB": 5900,
	"TIGO-13GB": 6400,
	"TIGO-14GB": 6900,
	"TIGO-15GB": 7400,
	"TIGO-16GB": 7900,
	"TIGO-17GB": 8400,
	"TIGO-18GB": 8800,
	"TIGO-19GB": 9300,
	"TIGO-20GB": 9800,
	"TIGO-21GB": 10300,
	"TIGO-22GB": 10800,
	"TIGO-23GB": 11300,
	"TIGO-24GB": 11800,
	"TIGO-25GB": 12300,
	"TIGO-26GB": 12800,
	"TIGO-27GB": 13300,
	"TIGO-28GB": 13700,
	"TIGO-29GB": 14200,
	"TIGO-30GB": 14700,

	// TIGO Big-Time
	"BIGTIME-15GB":  5700,
	"BIGTIME-20GB":  7100,
	"BIGTIME-25GB":  7600,
	"BIGTIME-30GB":  8000,
	"BIGTIME-40GB":  9000,
	"BIGTIME-50GB":  10000,
	"BIGTIME-100GB": 21000,

	// TELECEL
	"TELECEL-5GB":  2450,
	"TELECEL-10GB": 4500,
	"TELECEL-15GB": 6000,
	"TELECEL-20GB": 8000,
	"TELECEL-25GB": 10000,
	"TELECEL-30GB": 11100,

	// AFA membership registration
	"AFA-Registration": 800,
}

// providerOrder fixes the display order of provider groups.
var providerOrder = []string{"MTN", "TIGO", "BIGTIME", "TELECEL", "AFA"}

// PriceOf returns the price of a bundle in pesewas.
func PriceOf(bundleID string) (int64, error) {
	amount, ok := bundleAmounts[bundleID]
	if !ok {
		return 0, ErrUnknownBundle
	}
	return amount, nil
}

type Bundle struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
}

type ProviderBundles struct {
	Provider string   `json:"provider"`
	Bundles  []Bundle `json:"bundles"`
}

// Providers returns the catalog grouped by provider prefix, in stable order.
// Bundles within a provider are sorted by price ascending.
func Providers() []ProviderBundles {
	grouped := make(map[string][]Bundle)
	for id, price := range bundleAmounts {
		provider := strings.SplitN(id, "-", 2)[0]
		grouped[provider] = append(grouped[provider], Bundle{ID: id, Price: price})
	}

	out := make([]ProviderBundles, 0, len(providerOrder))
	for _, provider := range providerOrder {
		bundles := grouped[provider]
		sort.Slice(bundles, func(i, j int) bool {
			if bundles[i].Price != bundles[j].Price {
				return bundles[i].Price < bundles[j].Price
			}
			return bundles[i].ID < bundles[j].ID
		})
		out = append(out, ProviderBundles{Provider: provider, Bundles: bundles})
	}
	return out
}
