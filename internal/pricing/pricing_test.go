package pricing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceOfKnownBundles(t *testing.T) {
	amount, err := PriceOf("MTN-1GB")
	require.NoError(t, err)
	assert.Equal(t, int64(530), amount)

	amount, err = PriceOf("TELECEL-30GB")
	require.NoError(t, err)
	assert.Equal(t, int64(11100), amount)

	amount, err = PriceOf("AFA-Registration")
	require.NoError(t, err)
	assert.Equal(t, int64(800), amount)
}

func TestEveryCatalogEntryHasPositivePrice(t *testing.T) {
	for id, price := range bundleAmounts {
		assert.Greater(t, price, int64(0), "bundle %s", id)

		amount, err := PriceOf(id)
		require.NoError(t, err, "bundle %s", id)
		assert.Equal(t, price, amount, "bundle %s", id)
	}
}

func TestPriceOfUnknownBundle(t *testing.T) {
	for _, id := range []string{"XYZ-1GB", "MTN-31GB", "", "mtn-1gb"} {
		_, err := PriceOf(id)
		assert.True(t, errors.Is(err, ErrUnknownBundle), "bundle %q", id)
	}
}

func TestProvidersCoversWholeCatalog(t *testing.T) {
	groups := Providers()
	require.Len(t, groups, len(providerOrder))

	seen := make(map[string]int64)
	for _, group := range groups {
		for _, b := range group.Bundles {
			assert.True(t, strings.HasPrefix(b.ID, group.Provider+"-"),
				"bundle %s filed under %s", b.ID, group.Provider)
			seen[b.ID] = b.Price
		}
	}
	assert.Equal(t, bundleAmounts, seen)
}

func TestProvidersOrderIsStable(t *testing.T) {
	first := Providers()
	second := Providers()
	assert.Equal(t, first, second)

	// bundles within a provider sorted by price
	for _, group := range first {
		for i := 1; i < len(group.Bundles); i++ {
			assert.LessOrEqual(t, group.Bundles[i-1].Price, group.Bundles[i].Price,
				"provider %s not sorted", group.Provider)
		}
	}
}
