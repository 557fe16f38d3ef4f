package billing

import (
	"strings"

	"codeberg.org/incdrops/server/internal/quota"
)

// live price ids of the paid tiers
var defaultPrices = map[string]string{
	quota.TierBasic:    "price_1SPUKaHK4G9ZDA0FqdzT1Hae",
	quota.TierPro:      "price_1SPUM6HK4G9ZDA0FWqZJOLVH",
	quota.TierBusiness: "price_1SPUNGHK4G9ZDA0FrNIo8Dzt",
}

// maps paid tiers to their Stripe price ids and back
type Prices struct {
	byTier  map[string]string
	byPrice map[string]string
}

// the default prices with non-empty overrides applied
func NewPrices(overrides map[string]string) Prices {
	p := Prices{
		byTier:  make(map[string]string, len(defaultPrices)),
		byPrice: make(map[string]string, len(defaultPrices)),
	}

	for tier, price := range defaultPrices {
		if o := strings.TrimSpace(overrides[tier]); o != "" {
			price = o
		}

		p.byTier[tier] = price
		p.byPrice[price] = tier
	}

	return p
}

func (p Prices) PriceForTier(tier string) (string, bool) {
	price, ok := p.byTier[strings.ToLower(tier)]
	return price, ok
}

func (p Prices) TierForPrice(priceID string) (string, bool) {
	tier, ok := p.byPrice[priceID]
	return tier, ok
}
