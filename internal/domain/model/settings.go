package model

// RetentionSettings is the named configuration snapshot every component
// consumes. Defaults mirror what the service seeds on first run.
type RetentionSettings struct {
	Enabled            bool         `json:"enabled"`
	OfferPause         bool         `json:"offer_pause"`
	OfferSkip          bool         `json:"offer_skip"`
	SkipCooldownMonths int          `json:"skip_cooldown_months"`
	OfferDiscount      bool         `json:"offer_discount"`
	DiscountAmount     float64      `json:"discount_amount"`
	DiscountType       DiscountType `json:"discount_type"`
	Headline           string       `json:"headline"`
	Subheadline        string       `json:"subheadline"`
	WinbackEnabled     bool         `json:"winback_enabled"`
	WinbackSubject     string       `json:"winback_subject"`
	WinbackDelayDays   int          `json:"winback_delay_days"`
}

func DefaultRetentionSettings() RetentionSettings {
	return RetentionSettings{
		Enabled:            true,
		OfferPause:         true,
		OfferSkip:          true,
		SkipCooldownMonths: 3,
		OfferDiscount:      true,
		DiscountAmount:     20,
		DiscountType:       DiscountPercent,
		Headline:           "Wait - before you go!",
		Subheadline:        "We'd hate to lose you. Pick an option and we'll make it work.",
		WinbackEnabled:     true,
		WinbackSubject:     "We miss you - here's something special",
		WinbackDelayDays:   1,
	}
}
