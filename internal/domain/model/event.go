package model

import "time"

// EventKind classifies a retention event.
type EventKind string

const (
	EventPopupShown    EventKind = "popup_shown"
	EventOfferAccepted EventKind = "offer_accepted"
	EventCancelled     EventKind = "cancelled"
	EventWinbackSent   EventKind = "winback_sent"
)

// RetentionEvent is one immutable row in the append-only event log.
// Offer is empty for events that are not tied to a specific offer.
type RetentionEvent struct {
	ID             int64
	SubscriptionID string
	CustomerID     int64
	Kind           EventKind
	Offer          OfferKind
	Value          float64
	Backend        BackendKind
	CreatedAt      time.Time
}

// RetentionStats is the aggregate view the admin dashboard renders.
type RetentionStats struct {
	Shown    int               `json:"shown"`
	Saved    int               `json:"saved"`
	Lost     int               `json:"lost"`
	AvgValue float64           `json:"avg_value"`
	RevSaved float64           `json:"rev_saved"`
	SaveRate float64           `json:"save_rate"`
	ByOffer  map[OfferKind]int `json:"by_offer"`
}
