package model

import "time"

type ItemStatus string

const (
	ItemActive   ItemStatus = "active"
	ItemInactive ItemStatus = "inactive"
	ItemRented   ItemStatus = "rented"
)

var ItemCategories = []string{"outils", "high-tech", "loisirs", "maison", "sport", "vehicules", "autres"}

var ItemConditions = []string{"neuf", "tres-bon-etat", "bon-etat", "etat-correct"}

const DefaultItemCondition = "bon-etat"

type Item struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title          string          `json:"title" bson:"title" validate:"required,min=3,max=100"`
	Description    string          `json:"description" bson:"description" validate:"required,min=10,max=1000"`
	Category       string          `json:"category" bson:"category" validate:"required,oneof=outils high-tech loisirs maison sport vehicules autres"`
	PricePerDay    float64         `json:"price_per_day" bson:"price_per_day" validate:"gte=0,lte=1000000"`
	Deposit        float64         `json:"deposit" bson:"deposit" validate:"gte=0,lte=1000000"`
	Images         []ItemImage     `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=10,dive"`
	Location       Location        `json:"location" bson:"location" validate:"required"`
	OwnerID        string          `json:"owner_id" bson:"owner_id" validate:"omitempty,mongodb"`
	Features       []string        `json:"features,omitempty" bson:"features,omitempty" validate:"omitempty,max=20,dive,required,max=50"`
	Condition      string          `json:"condition" bson:"condition" validate:"omitempty,oneof=neuf tres-bon-etat bon-etat etat-correct"`
	Status         ItemStatus      `json:"status" bson:"status" validate:"omitempty,oneof=active inactive rented"`
	Specifications *Specifications `json:"specifications,omitempty" bson:"specifications,omitempty"`
	RentalCount    int             `json:"rental_count" bson:"rental_count"`
	Views          int             `json:"views" bson:"views"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

type ItemImage struct {
	URL      string `json:"url" bson:"url" validate:"required,url"`
	PublicID string `json:"public_id,omitempty" bson:"public_id,omitempty"`
}

type Location struct {
	Address     string       `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=200"`
	City        string       `json:"city" bson:"city" validate:"required,min=2,max=100"`
	PostalCode  string       `json:"postal_code,omitempty" bson:"postal_code,omitempty" validate:"omitempty,max=20"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" validate:"longitude"`
}

type Specifications struct {
	Brand      string `json:"brand,omitempty" bson:"brand,omitempty"`
	Model      string `json:"model,omitempty" bson:"model,omitempty"`
	Dimensions string `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight     string `json:"weight,omitempty" bson:"weight,omitempty"`
	Material   string `json:"material,omitempty" bson:"material,omitempty"`
}

// ItemUpdate carries the fields an owner may change. Nil means unchanged.
type ItemUpdate struct {
	Title          *string         `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,min=10,max=1000"`
	Category       *string         `json:"category,omitempty" validate:"omitempty,oneof=outils high-tech loisirs maison sport vehicules autres"`
	PricePerDay    *float64        `json:"price_per_day,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	Deposit        *float64        `json:"deposit,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	Images         *[]ItemImage    `json:"images,omitempty" validate:"omitempty,max=10,dive"`
	Location       *Location       `json:"location,omitempty" validate:"omitempty"`
	Features       *[]string       `json:"features,omitempty" validate:"omitempty,max=20,dive,required,max=50"`
	Condition      *string         `json:"condition,omitempty" validate:"omitempty,oneof=neuf tres-bon-etat bon-etat etat-correct"`
	Status         *ItemStatus     `json:"status,omitempty" validate:"omitempty,oneof=active inactive rented"`
	Specifications *Specifications `json:"specifications,omitempty"`
}

// ItemFilter is the listing query accepted by the catalog search. OwnerID
// narrows the listing to one owner's public items.
type ItemFilter struct {
	Category  string
	City      string
	MinPrice  *float64
	MaxPrice  *float64
	Condition string
	Search    string
	OwnerID   string
	Sort      string
	Page      int
	Limit     int
}

const (
	DefaultPopularLimit = 8
	MaxPopularLimit     = 50
)

const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortPopular   = "popular"
)

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

type ItemPage struct {
	Items      []*Item    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// OwnerItemsPage is a user's public listing page with their public profile.
type OwnerItemsPage struct {
	Items      []*Item        `json:"items"`
	User       *PublicProfile `json:"user"`
	Pagination Pagination     `json:"pagination"`
}

// Availability answers whether an item is free for a date range.
type Availability struct {
	Available   bool          `json:"available"`
	Conflicting *BookingDates `json:"conflicting_booking,omitempty"`
}
