package domain

import "time"

// EditionType represents the issuance policy of a card
type EditionType string

const (
	EditionTypeUnlimited EditionType = "unlimited"
	EditionTypeLimited   EditionType = "limited"
	EditionTypeTimed     EditionType = "timed"
	EditionTypeChallenge EditionType = "challenge"
	EditionTypeContest   EditionType = "contest"
)

// IsValidEditionType checks if an edition type is one of the closed set
func IsValidEditionType(t EditionType) bool {
	switch t {
	case EditionTypeUnlimited, EditionTypeLimited, EditionTypeTimed,
		EditionTypeChallenge, EditionTypeContest:
		return true
	}
	return false
}

// Discipline represents the subject category of a card
type Discipline string

const (
	DisciplineSports    Discipline = "sports"
	DisciplineCars      Discipline = "cars"
	DisciplineWildlife  Discipline = "wildlife"
	DisciplineLandscape Discipline = "landscape"
	DisciplineUrban     Discipline = "urban"
	DisciplinePortrait  Discipline = "portrait"
	DisciplineAbstract  Discipline = "abstract"
	DisciplineOther     Discipline = "other"
)

// CardStyle represents the visual template of a card
type CardStyle string

const (
	CardStyleSports   CardStyle = "sports"
	CardStyleCar      CardStyle = "car"
	CardStyleWildlife CardStyle = "wildlife"
	CardStyleClassic  CardStyle = "classic"
	CardStyleModern   CardStyle = "modern"
)

// CardLayout represents how the front image is framed
type CardLayout string

const (
	CardLayoutFullbleed CardLayout = "fullbleed"
	CardLayoutBordered  CardLayout = "bordered"
)

// AcquisitionSource records how an ownership record was obtained
type AcquisitionSource string

const (
	// AcquisitionCreator marks the permanent edition-0 creator copy
	AcquisitionCreator AcquisitionSource = "creator"
	// AcquisitionPrimary marks a copy issued through minting
	AcquisitionPrimary AcquisitionSource = "primary"
	// AcquisitionResale marks a copy bought on the marketplace
	AcquisitionResale AcquisitionSource = "resale"
)

// MintState is the conceptual issuance state of a card
type MintState string

const (
	// MintStateOpen means the card is uncapped or below its cap
	MintStateOpen MintState = "open"
	// MintStateExhausted means every numbered edition has been issued
	MintStateExhausted MintState = "exhausted"
	// MintStateExpired means a timed edition's window has closed
	MintStateExpired MintState = "expired"
)

// CardEventType represents the type of a published card event
type CardEventType string

const (
	CardEventCreated  CardEventType = "card.created"
	CardEventMinted   CardEventType = "card.minted"
	CardEventListed   CardEventType = "card.listed"
	CardEventUnlisted CardEventType = "card.unlisted"
	CardEventSold     CardEventType = "card.sold"
)

// CardEvent is the normalized event published to NATS after a committed
// ledger mutation. Reads of the event stream are eventually consistent
// with the store.
type CardEvent struct {
	EventID       string        `json:"event_id"`
	EventType     CardEventType `json:"event_type"`
	CardID        string        `json:"card_id"`
	OwnershipID   string        `json:"ownership_id,omitempty"`
	ActorID       string        `json:"actor_id,omitempty"`
	EditionNumber *int          `json:"edition_number,omitempty"`
	Price         float64       `json:"price,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
