package domain

import "time"

type ItemCategory string

const (
	ItemCategoryTent       ItemCategory = "tent"
	ItemCategoryTable      ItemCategory = "table"
	ItemCategoryChair      ItemCategory = "chair"
	ItemCategoryFan        ItemCategory = "fan"
	ItemCategoryTablecloth ItemCategory = "tablecloth"
	ItemCategoryOther      ItemCategory = "other"
)

type ItemStatus string

const (
	ItemStatusAvailable        ItemStatus = "available"
	ItemStatusUnderMaintenance ItemStatus = "under_maintenance"
	ItemStatusRetired          ItemStatus = "retired"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusUnderMaintenance, ItemStatusRetired:
		return true
	}
	return false
}

// ItemType describes a rentable kind of equipment. Identity is immutable;
// pricing may change over time, which is why bookings snapshot prices.
type ItemType struct {
	ID                     int64        `json:"id"`
	Category               ItemCategory `json:"category"`
	Description            string       `json:"description"`
	Size                   string       `json:"size"`
	Capacity               *int32       `json:"capacity,omitempty"`
	RentalPricePerDayCents int64        `json:"rental_price_per_day_cents"`
	ReplacementCostCents   int64        `json:"replacement_cost_cents"`
	CreatedOn              time.Time    `json:"created_on"`
	UpdatedOn              time.Time    `json:"updated_on"`
}

// RentalItem is a single serialized physical unit of an ItemType.
// "Reserved" is not a stored status: a unit is busy for a date range when an
// active transaction holds a RentalItemDetail for it over that range.
type RentalItem struct {
	ID                 int64      `json:"id"`
	ItemTypeID         int64      `json:"item_type_id"`
	ItemType           *ItemType  `json:"item_type,omitempty"` // populated on detail fetches
	SerialNumber       string     `json:"serial_number"`
	Status             ItemStatus `json:"status"`
	PurchaseDate       *time.Time `json:"purchase_date,omitempty"`
	LastInspectionDate *time.Time `json:"last_inspection_date,omitempty"`
	ConditionNotes     string     `json:"condition_notes"`
	CreatedOn          time.Time  `json:"created_on"`
	UpdatedOn          time.Time  `json:"updated_on"`
}

// ItemSet is a named bundle of item-type quantities rented as one priced unit.
type ItemSet struct {
	ID                      int64              `json:"id"`
	Name                    string             `json:"name"`
	Description             string             `json:"description"`
	BasePriceCents          int64              `json:"base_price_cents"` // per day
	ReplacementDepositCents int64              `json:"replacement_deposit_cents"`
	Components              []ItemSetComponent `json:"components,omitempty"`
	CreatedOn               time.Time          `json:"created_on"`
	UpdatedOn               time.Time          `json:"updated_on"`
}

// ItemSetComponent is one item-type requirement of a set. Unique per
// (set, item type); quantity is at least 1.
type ItemSetComponent struct {
	ID         int64     `json:"id"`
	ItemSetID  int64     `json:"item_set_id"`
	ItemTypeID int64     `json:"item_type_id"`
	ItemType   *ItemType `json:"item_type,omitempty"`
	Quantity   int32     `json:"quantity"`
}
