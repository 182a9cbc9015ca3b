package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumenshare/cardledger/internal/catalog"
	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/exchange"
	"github.com/lumenshare/cardledger/internal/ledger"
	"github.com/lumenshare/cardledger/internal/minting"
	"github.com/lumenshare/cardledger/internal/store"
	"github.com/lumenshare/cardledger/internal/wallet"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// CreateCard creates a card definition with its creator copy
	// POST /api/v1/cards
	CreateCard(c *gin.Context)

	// GetCard retrieves a single card definition
	// GET /api/v1/cards/:id
	GetCard(c *gin.Context)

	// ListCards retrieves cards filtered by creator
	// GET /api/v1/cards?creator_id=<id>
	ListCards(c *gin.Context)

	// MintCard mints the next edition of a card to the buyer
	// POST /api/v1/cards/:id/mint
	MintCard(c *gin.Context)

	// GetCollection retrieves a user's owned copies
	// GET /api/v1/users/:id/collection
	GetCollection(c *gin.Context)

	// SetListing puts an owned copy up for sale
	// PUT /api/v1/ownerships/:id/listing
	SetListing(c *gin.Context)

	// RemoveListing takes an owned copy off the market
	// DELETE /api/v1/ownerships/:id/listing
	RemoveListing(c *gin.Context)

	// QueryMarketplace retrieves current listings with optional filters
	// GET /api/v1/marketplace?rarity=<tier>&discipline=<d>&edition_type=<t>&min_price=<p>&max_price=<p>&sort=<s>&limit=<n>
	QueryMarketplace(c *gin.Context)

	// Purchase buys a listed copy
	// POST /api/v1/ownerships/:id/purchase
	Purchase(c *gin.Context)

	// GetWallet retrieves a user's earnings balance and recent ledger
	// GET /api/v1/users/:id/wallet
	GetWallet(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	catalog  catalog.Service
	ledger   ledger.Service
	minting  minting.Coordinator
	exchange exchange.Service
	wallet   wallet.Service
}

// NewHandler creates a new REST API handler
func NewHandler(cat catalog.Service, led ledger.Service, mint minting.Coordinator, exch exchange.Service, wal wallet.Service) Handler {
	return &handler{
		catalog:  cat,
		ledger:   led,
		minting:  mint,
		exchange: exch,
		wallet:   wal,
	}
}

// CreateCard creates a card definition with its creator copy
func (h *handler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	card, creatorCopy, err := h.catalog.CreateCard(c.Request.Context(), catalog.CreateCardRequest{
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
		Title:       req.Title,
		Description: req.Description,
		FrontImage:  req.FrontImage,
		BackImage:   req.BackImage,
		ImagePosX:   req.ImagePosX,
		ImagePosY:   req.ImagePosY,
		Discipline:  req.Discipline,
		CardStyle:   req.CardStyle,
		CardLayout:  req.CardLayout,
		Rarity:      req.Rarity,
		EditionType: req.EditionType,
		EditionSize: req.EditionSize,
		MaxMints:    req.MaxMints,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"card":         toCardDTO(card),
		"creator_copy": toOwnershipDTO(creatorCopy),
	})
}

// GetCard retrieves a single card definition
func (h *handler) GetCard(c *gin.Context) {
	cardID := c.Param("id")
	if cardID == "" {
		respondBadRequest(c, "Card ID is required")
		return
	}

	card, err := h.catalog.GetCard(c.Request.Context(), cardID)
	if err != nil {
		respondInternalError(c, err, "Failed to get card")
		return
	}
	if card == nil {
		respondNotFound(c, "Card not found")
		return
	}

	c.JSON(http.StatusOK, toCardDTO(card))
}

// ListCards retrieves cards filtered by creator
func (h *handler) ListCards(c *gin.Context) {
	creatorID := c.Query("creator_id")

	cards, err := h.catalog.ListByCreator(c.Request.Context(), creatorID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	dtos := make([]CardDTO, 0, len(cards))
	for i := range cards {
		dtos = append(dtos, toCardDTO(&cards[i]))
	}

	c.JSON(http.StatusOK, gin.H{"cards": dtos})
}

// MintCard mints the next edition of a card to the buyer
func (h *handler) MintCard(c *gin.Context) {
	cardID := c.Param("id")
	if cardID == "" {
		respondBadRequest(c, "Card ID is required")
		return
	}

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ownership, err := h.minting.Mint(c.Request.Context(), minting.MintRequest{
		CardID:    cardID,
		BuyerID:   req.BuyerID,
		BuyerName: req.BuyerName,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOwnershipDTO(ownership))
}

// GetCollection retrieves a user's owned copies
func (h *handler) GetCollection(c *gin.Context) {
	ownerID := c.Param("id")

	results, err := h.ledger.ListOwnedBy(c.Request.Context(), ownerID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": toOwnedCardDTOs(results)})
}

// SetListing puts an owned copy up for sale
func (h *handler) SetListing(c *gin.Context) {
	ownershipID := c.Param("id")

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ownership, err := h.ledger.SetListing(c.Request.Context(), ownershipID, req.SalePrice)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOwnershipDTO(ownership))
}

// RemoveListing takes an owned copy off the market
func (h *handler) RemoveListing(c *gin.Context) {
	ownershipID := c.Param("id")

	ownership, err := h.ledger.Unlist(c.Request.Context(), ownershipID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOwnershipDTO(ownership))
}

// QueryMarketplace retrieves current listings with optional filters
func (h *handler) QueryMarketplace(c *gin.Context) {
	query, err := parseMarketplaceQuery(c)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	listings, err := h.exchange.Query(c.Request.Context(), *query)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	dtos := make([]ListingDTO, 0, len(listings))
	for _, l := range listings {
		dtos = append(dtos, ListingDTO{
			Ownership: toOwnershipDTO(&l.Ownership),
			Card:      toCardDTO(&l.Card),
		})
	}

	c.JSON(http.StatusOK, gin.H{"listings": dtos})
}

// Purchase buys a listed copy
func (h *handler) Purchase(c *gin.Context) {
	ownershipID := c.Param("id")

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ownership, err := h.exchange.Purchase(c.Request.Context(), exchange.PurchaseRequest{
		OwnershipID: ownershipID,
		BuyerID:     req.BuyerID,
		BuyerName:   req.BuyerName,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOwnershipDTO(ownership))
}

// GetWallet retrieves a user's earnings balance and recent ledger
func (h *handler) GetWallet(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		respondBadRequest(c, "User ID is required")
		return
	}

	balance, err := h.wallet.GetWalletBalance(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "Failed to get wallet balance")
		return
	}

	c.JSON(http.StatusOK, toWalletDTO(balance))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "cardledger-api",
	})
}

func invalidQueryParam(name, value string) error {
	return domain.NewValidationError(name, fmt.Sprintf("invalid value %q", value))
}

// parseMarketplaceQuery parses GET /api/v1/marketplace query parameters
func parseMarketplaceQuery(c *gin.Context) (*exchange.QueryRequest, error) {
	query := exchange.QueryRequest{
		Rarity:      c.Query("rarity"),
		Discipline:  c.Query("discipline"),
		EditionType: c.Query("edition_type"),
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalidQueryParam("min_price", raw)
		}
		query.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalidQueryParam("max_price", raw)
		}
		query.MaxPrice = &v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, invalidQueryParam("limit", raw)
		}
		query.Limit = v
	}

	switch sort := c.Query("sort"); sort {
	case "", string(store.ListingSortNewest):
		query.Sort = store.ListingSortNewest
	case string(store.ListingSortPriceAsc):
		query.Sort = store.ListingSortPriceAsc
	case string(store.ListingSortPriceDesc):
		query.Sort = store.ListingSortPriceDesc
	default:
		return nil, invalidQueryParam("sort", sort)
	}

	return &query, nil
}
