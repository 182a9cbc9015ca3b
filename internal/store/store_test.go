package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestCard creates a card input with sane defaults
func buildTestCard(creatorID string, editionType domain.EditionType) CreateCardInput {
	return CreateCardInput{
		CreatorID:   creatorID,
		CreatorName: "Creator " + creatorID,
		Title:       "Test Card",
		Description: "A card for testing",
		FrontImage:  "https://cdn.example.com/front.png",
		ImagePosX:   50,
		ImagePosY:   50,
		Discipline:  domain.DisciplineOther,
		CardStyle:   domain.CardStyleClassic,
		CardLayout:  domain.CardLayoutFullbleed,
		Rarity:      domain.RarityCommon,
		EditionType: editionType,
		BasePrice:   10,
	}
}

// buildLimitedCard creates a limited edition card input with the given cap
func buildLimitedCard(creatorID string, editionSize int) CreateCardInput {
	input := buildTestCard(creatorID, domain.EditionTypeLimited)
	input.EditionSize = &editionSize
	return input
}

// buildTimedCard creates a timed edition card input with the given mint ceiling
func buildTimedCard(creatorID string, maxMints int) CreateCardInput {
	input := buildTestCard(creatorID, domain.EditionTypeTimed)
	input.MaxMints = &maxMints
	return input
}

func mintInput(cardID, buyerID string) MintEditionInput {
	return MintEditionInput{
		CardID:    cardID,
		BuyerID:   buyerID,
		BuyerName: "Buyer " + buyerID,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// =============================================================================
// Card definition tests
// =============================================================================

func testCreateCard(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("creates card and edition zero creator copy atomically", func(t *testing.T) {
		input := buildLimitedCard("creator-1", 5)

		card, creatorCopy, err := store.CreateCard(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, card)
		require.NotNil(t, creatorCopy)

		assert.NotEmpty(t, card.ID)
		assert.Equal(t, input.CreatorID, card.CreatorID)
		assert.Equal(t, input.Title, card.Title)
		assert.Equal(t, domain.EditionTypeLimited, card.EditionType)
		require.NotNil(t, card.EditionSize)
		assert.Equal(t, 5, *card.EditionSize)
		assert.Equal(t, 0, card.MintedCount)

		// Floor price starts at the base price
		assert.Equal(t, input.BasePrice, card.StatsFloorPrice)

		assert.Equal(t, card.ID, creatorCopy.CardID)
		assert.Equal(t, input.CreatorID, creatorCopy.OwnerID)
		assert.Equal(t, 0, creatorCopy.EditionNumber)
		assert.True(t, creatorCopy.IsCreatorCopy)
		assert.Equal(t, domain.AcquisitionCreator, creatorCopy.AcquiredFrom)
		assert.False(t, creatorCopy.ForSale)

		// Both rows are visible after the transaction commits
		fetched, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)

		copyRow, err := store.GetOwnershipByID(ctx, creatorCopy.ID)
		require.NoError(t, err)
		require.NotNil(t, copyRow)
	})
}

func testGetCardByID(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("returns nil without error for unknown id", func(t *testing.T) {
		card, err := store.GetCardByID(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, card)
	})

	t.Run("returns the card for a known id", func(t *testing.T) {
		created, _, err := store.CreateCard(ctx, buildTestCard("creator-get", domain.EditionTypeUnlimited))
		require.NoError(t, err)

		card, err := store.GetCardByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, card)
		assert.Equal(t, created.ID, card.ID)
		assert.Equal(t, created.Title, card.Title)
	})
}

func testListCardsByCreator(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("returns only the creator's cards, newest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			input := buildTestCard("creator-list", domain.EditionTypeUnlimited)
			input.Title = fmt.Sprintf("Card %d", i)
			_, _, err := store.CreateCard(ctx, input)
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}
		_, _, err := store.CreateCard(ctx, buildTestCard("someone-else", domain.EditionTypeUnlimited))
		require.NoError(t, err)

		cards, err := store.ListCardsByCreator(ctx, "creator-list")
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.Equal(t, "Card 2", cards[0].Title)
		assert.Equal(t, "Card 0", cards[2].Title)
		for _, c := range cards {
			assert.Equal(t, "creator-list", c.CreatorID)
		}
	})

	t.Run("returns empty slice for creator with no cards", func(t *testing.T) {
		cards, err := store.ListCardsByCreator(ctx, "creator-without-cards")
		require.NoError(t, err)
		assert.Empty(t, cards)
	})
}

// =============================================================================
// Minting tests
// =============================================================================

func testMintEdition(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("assigns sequential edition numbers starting at one", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-mint", 10))
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			ownership, err := store.MintEdition(ctx, mintInput(card.ID, fmt.Sprintf("buyer-%d", i)), nil)
			require.NoError(t, err)
			require.NotNil(t, ownership)
			assert.Equal(t, i, ownership.EditionNumber)
			assert.False(t, ownership.IsCreatorCopy)
			assert.Equal(t, domain.AcquisitionPrimary, ownership.AcquiredFrom)
			assert.Equal(t, card.BasePrice, ownership.PurchasePrice)
		}

		updated, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, updated.MintedCount)
		assert.Equal(t, 3, updated.StatsTotalMinted)
		assert.Equal(t, card.BasePrice, updated.StatsLastSalePrice)
	})

	t.Run("limited edition rejects mints past the cap", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-cap", 2))
		require.NoError(t, err)

		first, err := store.MintEdition(ctx, mintInput(card.ID, "buyer-a"), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, first.EditionNumber)

		second, err := store.MintEdition(ctx, mintInput(card.ID, "buyer-b"), nil)
		require.NoError(t, err)
		assert.Equal(t, 2, second.EditionNumber)

		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-c"), nil)
		require.ErrorIs(t, err, domain.ErrEditionExhausted)

		updated, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.MintedCount)
	})

	t.Run("timed edition rejects mints past the ceiling", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildTimedCard("creator-timed", 1))
		require.NoError(t, err)

		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-a"), nil)
		require.NoError(t, err)

		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-b"), nil)
		require.ErrorIs(t, err, domain.ErrEditionExhausted)
	})

	t.Run("timed edition rejects mints after expiry", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildTimedCard("creator-expired", 100))
		require.NoError(t, err)

		past := time.Now().Add(-time.Hour)
		err = testDB.Model(&schema.Card{}).Where("id = ?", card.ID).
			Update("expires_at", past).Error
		require.NoError(t, err)

		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-late"), nil)
		require.ErrorIs(t, err, domain.ErrEditionExpired)
	})

	t.Run("returns card not found for unknown card", func(t *testing.T) {
		_, err := store.MintEdition(ctx, mintInput("missing-card", "buyer"), nil)
		require.ErrorIs(t, err, domain.ErrCardNotFound)
	})

	t.Run("settle receives the locked card and the assigned edition number", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-settle", 5))
		require.NoError(t, err)

		var seenEdition int
		var seenCardID string
		ownership, err := store.MintEdition(ctx, mintInput(card.ID, "buyer-settle"),
			func(ctx context.Context, c *schema.Card, editionNumber int) error {
				seenCardID = c.ID
				seenEdition = editionNumber
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, card.ID, seenCardID)
		assert.Equal(t, 1, seenEdition)
		assert.Equal(t, seenEdition, ownership.EditionNumber)
	})

	t.Run("settle failure rolls back the whole mint", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-rollback", 5))
		require.NoError(t, err)

		paymentErr := domain.NewPaymentError("wallet service unavailable", errors.New("boom"))
		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-broke"),
			func(ctx context.Context, c *schema.Card, editionNumber int) error {
				return paymentErr
			})
		require.Error(t, err)
		assert.True(t, domain.IsPaymentError(err))

		// Counter unchanged, no ownership row beyond the creator copy
		updated, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.MintedCount)

		var count int64
		require.NoError(t, testDB.Model(&schema.CardOwnership{}).
			Where("card_id = ?", card.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("settle writes join the mint transaction", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-joined", 5))
		require.NoError(t, err)

		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-joined"),
			func(ctx context.Context, c *schema.Card, editionNumber int) error {
				tx := DBFromContext(ctx, nil)
				require.NotNil(t, tx)
				return tx.Create(&schema.WalletAccount{
					UserID:           "creator-joined",
					Balance:          c.BasePrice,
					LifetimeEarnings: c.BasePrice,
				}).Error
			})
		require.NoError(t, err)

		var account schema.WalletAccount
		require.NoError(t, testDB.Where("user_id = ?", "creator-joined").First(&account).Error)
		assert.Equal(t, card.BasePrice, account.Balance)
	})

	t.Run("settle writes roll back with a failed mint", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-rolled", 5))
		require.NoError(t, err)

		_, err = store.MintEdition(ctx, mintInput(card.ID, "buyer-rolled"),
			func(ctx context.Context, c *schema.Card, editionNumber int) error {
				tx := DBFromContext(ctx, nil)
				if err := tx.Create(&schema.WalletAccount{
					UserID:  "creator-rolled",
					Balance: c.BasePrice,
				}).Error; err != nil {
					return err
				}
				return domain.NewPaymentError("declined after credit", nil)
			})
		require.Error(t, err)

		err = testDB.Where("user_id = ?", "creator-rolled").First(&schema.WalletAccount{}).Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func testMintEditionConcurrent(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("concurrent mints never exceed the cap or duplicate numbers", func(t *testing.T) {
		const editionCap = 10
		const attempts = 20

		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-race", editionCap))
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]*schema.CardOwnership, attempts)
		errs := make([]error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = store.MintEdition(ctx, mintInput(card.ID, fmt.Sprintf("racer-%d", i)), nil)
			}(i)
		}
		wg.Wait()

		seen := make(map[int]bool)
		succeeded := 0
		for i := 0; i < attempts; i++ {
			if errs[i] == nil {
				succeeded++
				num := results[i].EditionNumber
				assert.False(t, seen[num], "edition number %d assigned twice", num)
				assert.GreaterOrEqual(t, num, 1)
				assert.LessOrEqual(t, num, editionCap)
				seen[num] = true
			} else {
				assert.ErrorIs(t, errs[i], domain.ErrEditionExhausted)
			}
		}
		assert.Equal(t, editionCap, succeeded)
		assert.Len(t, seen, editionCap)

		updated, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, editionCap, updated.MintedCount)
	})
}

// =============================================================================
// Listing tests
// =============================================================================

func testSetListing(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("lists a minted copy for sale", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-listing", 5))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "owner-1"), nil)
		require.NoError(t, err)

		listed, err := store.SetListing(ctx, minted.ID, 25)
		require.NoError(t, err)
		assert.True(t, listed.ForSale)
		assert.Equal(t, float64(25), listed.SalePrice)
		require.NotNil(t, listed.ListedAt)
	})

	t.Run("creator copies are never tradable", func(t *testing.T) {
		_, creatorCopy, err := store.CreateCard(ctx, buildLimitedCard("creator-copy", 5))
		require.NoError(t, err)

		_, err = store.SetListing(ctx, creatorCopy.ID, 25)
		require.ErrorIs(t, err, domain.ErrCreatorCopyNotTradable)
		assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	})

	t.Run("unlimited edition copies are never tradable", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildTestCard("creator-unlimited", domain.EditionTypeUnlimited))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "owner-unl"), nil)
		require.NoError(t, err)

		_, err = store.SetListing(ctx, minted.ID, 25)
		require.ErrorIs(t, err, domain.ErrUnlimitedNotTradable)
		assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	})

	t.Run("returns ownership not found for unknown id", func(t *testing.T) {
		_, err := store.SetListing(ctx, "missing-ownership", 25)
		require.ErrorIs(t, err, domain.ErrOwnershipNotFound)
	})

	t.Run("floor price only ever moves down", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-floor", 5))
		require.NoError(t, err)
		first, err := store.MintEdition(ctx, mintInput(card.ID, "owner-f1"), nil)
		require.NoError(t, err)
		second, err := store.MintEdition(ctx, mintInput(card.ID, "owner-f2"), nil)
		require.NoError(t, err)

		// Base price 10; listing above it leaves the floor alone
		_, err = store.SetListing(ctx, first.ID, 50)
		require.NoError(t, err)
		updated, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(10), updated.StatsFloorPrice)

		// Undercutting lowers it
		_, err = store.SetListing(ctx, second.ID, 4)
		require.NoError(t, err)
		updated, err = store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(4), updated.StatsFloorPrice)

		// Unlisting the cheap copy does not restore the floor
		_, err = store.Unlist(ctx, second.ID)
		require.NoError(t, err)
		updated, err = store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(4), updated.StatsFloorPrice)
	})
}

func testUnlist(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("clears the listing state", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-unlist", 5))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "owner-u1"), nil)
		require.NoError(t, err)
		_, err = store.SetListing(ctx, minted.ID, 25)
		require.NoError(t, err)

		unlisted, err := store.Unlist(ctx, minted.ID)
		require.NoError(t, err)
		assert.False(t, unlisted.ForSale)
		assert.Equal(t, float64(0), unlisted.SalePrice)
		assert.Nil(t, unlisted.ListedAt)
	})

	t.Run("returns ownership not found for unknown id", func(t *testing.T) {
		_, err := store.Unlist(ctx, "missing-ownership")
		require.ErrorIs(t, err, domain.ErrOwnershipNotFound)
	})
}

// =============================================================================
// Transfer tests
// =============================================================================

func testTransferOwnership(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("mutates the listing row in place for the buyer", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-xfer", 5))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "seller-1"), nil)
		require.NoError(t, err)
		_, err = store.SetListing(ctx, minted.ID, 40)
		require.NoError(t, err)

		transferred, err := store.TransferOwnership(ctx, TransferInput{
			OwnershipID: minted.ID,
			BuyerID:     "buyer-1",
			BuyerName:   "Buyer One",
		}, nil)
		require.NoError(t, err)

		// Same row, same edition number, new owner
		assert.Equal(t, minted.ID, transferred.ID)
		assert.Equal(t, minted.EditionNumber, transferred.EditionNumber)
		assert.Equal(t, "buyer-1", transferred.OwnerID)
		assert.Equal(t, domain.AcquisitionResale, transferred.AcquiredFrom)
		assert.Equal(t, float64(40), transferred.PurchasePrice)
		assert.False(t, transferred.ForSale)
		assert.Equal(t, float64(0), transferred.SalePrice)
		assert.Nil(t, transferred.ListedAt)

		updated, err := store.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(40), updated.StatsLastSalePrice)
	})

	t.Run("rejects purchase of an unlisted copy before calling settle", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-nfs", 5))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "seller-nfs"), nil)
		require.NoError(t, err)

		settleCalled := false
		_, err = store.TransferOwnership(ctx, TransferInput{
			OwnershipID: minted.ID,
			BuyerID:     "buyer-nfs",
			BuyerName:   "Buyer",
		}, func(ctx context.Context, c *schema.Card, listing *schema.CardOwnership) error {
			settleCalled = true
			return nil
		})
		require.ErrorIs(t, err, domain.ErrNotForSale)
		assert.False(t, settleCalled)
	})

	t.Run("returns ownership not found for unknown id", func(t *testing.T) {
		_, err := store.TransferOwnership(ctx, TransferInput{
			OwnershipID: "missing",
			BuyerID:     "buyer",
			BuyerName:   "Buyer",
		}, nil)
		require.ErrorIs(t, err, domain.ErrOwnershipNotFound)
	})

	t.Run("settle failure leaves the listing live and the seller in place", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-fail", 5))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "seller-fail"), nil)
		require.NoError(t, err)
		_, err = store.SetListing(ctx, minted.ID, 40)
		require.NoError(t, err)

		_, err = store.TransferOwnership(ctx, TransferInput{
			OwnershipID: minted.ID,
			BuyerID:     "buyer-fail",
			BuyerName:   "Buyer",
		}, func(ctx context.Context, c *schema.Card, listing *schema.CardOwnership) error {
			return domain.NewPaymentError("insufficient funds", nil)
		})
		require.Error(t, err)
		assert.True(t, domain.IsPaymentError(err))

		after, err := store.GetOwnershipByID(ctx, minted.ID)
		require.NoError(t, err)
		assert.Equal(t, "seller-fail", after.OwnerID)
		assert.True(t, after.ForSale)
		assert.Equal(t, float64(40), after.SalePrice)
	})
}

func testTransferOwnershipConcurrent(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("exactly one of two concurrent buyers wins", func(t *testing.T) {
		card, _, err := store.CreateCard(ctx, buildLimitedCard("creator-race2", 5))
		require.NoError(t, err)
		minted, err := store.MintEdition(ctx, mintInput(card.ID, "seller-race"), nil)
		require.NoError(t, err)
		_, err = store.SetListing(ctx, minted.ID, 30)
		require.NoError(t, err)

		const buyers = 4
		var wg sync.WaitGroup
		var settleCalls int64
		var mu sync.Mutex
		errs := make([]error, buyers)

		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = store.TransferOwnership(ctx, TransferInput{
					OwnershipID: minted.ID,
					BuyerID:     fmt.Sprintf("race-buyer-%d", i),
					BuyerName:   "Racer",
				}, func(ctx context.Context, c *schema.Card, listing *schema.CardOwnership) error {
					mu.Lock()
					settleCalls++
					mu.Unlock()
					return nil
				})
			}(i)
		}
		wg.Wait()

		winners := 0
		for i := 0; i < buyers; i++ {
			if errs[i] == nil {
				winners++
			} else {
				assert.ErrorIs(t, errs[i], domain.ErrNotForSale)
			}
		}
		assert.Equal(t, 1, winners)
		assert.Equal(t, int64(1), settleCalls)

		after, err := store.GetOwnershipByID(ctx, minted.ID)
		require.NoError(t, err)
		assert.False(t, after.ForSale)
	})
}

// =============================================================================
// Query tests
// =============================================================================

func testListOwnershipsByOwner(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("returns owned copies joined with their cards, newest first", func(t *testing.T) {
		cardA, _, err := store.CreateCard(ctx, buildLimitedCard("creator-coll-a", 5))
		require.NoError(t, err)
		cardB, _, err := store.CreateCard(ctx, buildLimitedCard("creator-coll-b", 5))
		require.NoError(t, err)

		firstMint, err := store.MintEdition(ctx, mintInput(cardA.ID, "collector"), nil)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		secondMint, err := store.MintEdition(ctx, mintInput(cardB.ID, "collector"), nil)
		require.NoError(t, err)

		// Another user's copy is invisible to the collector
		_, err = store.MintEdition(ctx, mintInput(cardA.ID, "bystander"), nil)
		require.NoError(t, err)

		results, err := store.ListOwnershipsByOwner(ctx, "collector")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, secondMint.ID, results[0].Ownership.ID)
		assert.Equal(t, cardB.ID, results[0].Card.ID)
		assert.Equal(t, firstMint.ID, results[1].Ownership.ID)
		assert.Equal(t, cardA.ID, results[1].Card.ID)
	})

	t.Run("returns empty slice for unknown owner", func(t *testing.T) {
		results, err := store.ListOwnershipsByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func testListListings(t *testing.T, store Store) {
	ctx := context.Background()

	// Three listed copies at 10, 20, 30 plus one unlisted. Subtests
	// share the database, so earlier listings come off the market
	// first to keep each market snapshot to its own three rows.
	setup := func(t *testing.T, creator string) []string {
		stale, err := store.ListListings(ctx, ListingFilter{})
		require.NoError(t, err)
		for _, l := range stale {
			_, err := store.Unlist(ctx, l.ID)
			require.NoError(t, err)
		}

		card, _, err := store.CreateCard(ctx, buildLimitedCard(creator, 10))
		require.NoError(t, err)

		ids := make([]string, 0, 3)
		for i, price := range []float64{10, 20, 30} {
			minted, err := store.MintEdition(ctx, mintInput(card.ID, fmt.Sprintf("%s-owner-%d", creator, i)), nil)
			require.NoError(t, err)
			listed, err := store.SetListing(ctx, minted.ID, price)
			require.NoError(t, err)
			ids = append(ids, listed.ID)
			time.Sleep(5 * time.Millisecond)
		}
		_, err = store.MintEdition(ctx, mintInput(card.ID, creator+"-holder"), nil)
		require.NoError(t, err)
		return ids
	}

	t.Run("returns only live listings", func(t *testing.T) {
		setup(t, "creator-mkt1")

		listings, err := store.ListListings(ctx, ListingFilter{})
		require.NoError(t, err)
		require.Len(t, listings, 3)
		for _, l := range listings {
			assert.True(t, l.ForSale)
		}
	})

	t.Run("applies the price range", func(t *testing.T) {
		setup(t, "creator-mkt2")

		listings, err := store.ListListings(ctx, ListingFilter{
			MinPrice: floatPtr(15),
			MaxPrice: floatPtr(25),
		})
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, float64(20), listings[0].SalePrice)
	})

	t.Run("sorts by price in both directions", func(t *testing.T) {
		setup(t, "creator-mkt3")

		asc, err := store.ListListings(ctx, ListingFilter{Sort: ListingSortPriceAsc})
		require.NoError(t, err)
		require.Len(t, asc, 3)
		assert.Equal(t, float64(10), asc[0].SalePrice)
		assert.Equal(t, float64(30), asc[2].SalePrice)

		desc, err := store.ListListings(ctx, ListingFilter{Sort: ListingSortPriceDesc})
		require.NoError(t, err)
		require.Len(t, desc, 3)
		assert.Equal(t, float64(30), desc[0].SalePrice)
		assert.Equal(t, float64(10), desc[2].SalePrice)
	})

	t.Run("defaults to newest first", func(t *testing.T) {
		ids := setup(t, "creator-mkt4")

		listings, err := store.ListListings(ctx, ListingFilter{})
		require.NoError(t, err)
		require.Len(t, listings, 3)
		assert.Equal(t, ids[2], listings[0].ID)
		assert.Equal(t, ids[0], listings[2].ID)
	})

	t.Run("caps the result set at the limit", func(t *testing.T) {
		setup(t, "creator-mkt5")

		listings, err := store.ListListings(ctx, ListingFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, listings, 2)
	})
}

// =============================================================================
// Suite runner
// =============================================================================

// RunStoreTests runs all store tests against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"CreateCard", testCreateCard},
		{"GetCardByID", testGetCardByID},
		{"ListCardsByCreator", testListCardsByCreator},
		{"MintEdition", testMintEdition},
		{"MintEditionConcurrent", testMintEditionConcurrent},
		{"SetListing", testSetListing},
		{"Unlist", testUnlist},
		{"TransferOwnership", testTransferOwnership},
		{"TransferOwnershipConcurrent", testTransferOwnershipConcurrent},
		{"ListOwnershipsByOwner", testListOwnershipsByOwner},
		{"ListListings", testListListings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
