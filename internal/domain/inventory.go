package domain

import (
	"strings"
	"time"
)

// Item is a perishable household inventory entry.
type Item struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	Price      float64   `json:"price"`
	ExpiryDate Date      `json:"expiry_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Cost is the value of the item line: unit price times quantity.
func (i *Item) Cost() float64 {
	return i.Price * i.Quantity
}

// ExpiryStatus buckets an item by urgency for display.
type ExpiryStatus string

const (
	StatusRed    ExpiryStatus = "expiry-red"
	StatusYellow ExpiryStatus = "expiry-yellow"
	StatusGreen  ExpiryStatus = "expiry-green"
)

// ExpiringSoonDays is the threshold for the "expiring soon" banner count.
const ExpiringSoonDays = 5

// StatusFor maps days left to a display bucket.
func StatusFor(daysLeft int) ExpiryStatus {
	switch {
	case daysLeft <= 2:
		return StatusRed
	case daysLeft <= ExpiringSoonDays:
		return StatusYellow
	}
	return StatusGreen
}

// ListedItem is an item decorated with values derived from today's date.
type ListedItem struct {
	Item
	DaysLeft int          `json:"days_left"`
	Status   ExpiryStatus `json:"status"`
}

// ItemRequest is the inbound payload for creating or replacing an item.
type ItemRequest struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	ExpiryDate *Date   `json:"expiry_date"`
}

func (r *ItemRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" || len(name) > 200 {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrInvalidCategory
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Price < 0 {
		return ErrInvalidPrice
	}
	if r.ExpiryDate == nil || r.ExpiryDate.IsZero() {
		return ErrInvalidExpiry
	}
	return nil
}

// QuantityRequest adjusts an item's quantity by Delta.
type QuantityRequest struct {
	Delta float64 `json:"delta"`
}
