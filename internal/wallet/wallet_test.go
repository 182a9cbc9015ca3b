package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenshare/cardledger/internal/wallet"
)

func TestSplitResale(t *testing.T) {
	tests := []struct {
		name            string
		price           float64
		sellerIsCreator bool
		wantFee         float64
		wantRoyalty     float64
		wantProceeds    float64
	}{
		{
			name:         "standard resale",
			price:        100,
			wantFee:      10,
			wantRoyalty:  5,
			wantProceeds: 85,
		},
		{
			name:            "creator reselling own card forfeits the royalty share",
			price:           100,
			sellerIsCreator: true,
			wantFee:         10,
			wantRoyalty:     0,
			wantProceeds:    85,
		},
		{
			name:         "fractional price",
			price:        19.99,
			wantFee:      1.999,
			wantRoyalty:  0.9995,
			wantProceeds: 16.9915,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := wallet.SplitResale(tt.price, tt.sellerIsCreator)
			assert.InDelta(t, tt.wantFee, split.PlatformFee, 1e-9)
			assert.InDelta(t, tt.wantRoyalty, split.Royalty, 1e-9)
			assert.InDelta(t, tt.wantProceeds, split.SellerProceeds, 1e-9)
		})
	}
}

func TestSplitResaleConserved(t *testing.T) {
	for _, price := range []float64{0.01, 1, 42.5, 100, 9999.99} {
		split := wallet.SplitResale(price, false)
		assert.InDelta(t, price, split.PlatformFee+split.Royalty+split.SellerProceeds, 1e-9)
	}
}

func TestSplitResaleRetainsCreatorRoyalty(t *testing.T) {
	// The seller proceeds must not depend on who the seller is; only
	// the royalty credit does.
	standard := wallet.SplitResale(200, false)
	creator := wallet.SplitResale(200, true)

	assert.InDelta(t, standard.SellerProceeds, creator.SellerProceeds, 1e-9)
	assert.InDelta(t, 10, standard.Royalty, 1e-9)
	assert.Zero(t, creator.Royalty)
	assert.InDelta(t, 10, 200-(creator.PlatformFee+creator.Royalty+creator.SellerProceeds), 1e-9)
}
