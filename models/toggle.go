package models

// FeatureKey identifies an optional product area that can be disabled
// process-wide at runtime
type FeatureKey string

const (
	FeatureCrypto       FeatureKey = "crypto"
	FeatureVirtualCards FeatureKey = "virtual_cards"
	FeatureBulkSMS      FeatureKey = "bulk_sms"
	FeatureFlights      FeatureKey = "flights"
	FeatureGiftCards    FeatureKey = "gift_cards"
)

// AllFeatureKeys lists every feature key a route policy may reference
var AllFeatureKeys = []FeatureKey{
	FeatureCrypto,
	FeatureVirtualCards,
	FeatureBulkSMS,
	FeatureFlights,
	FeatureGiftCards,
}

// Valid returns true if the key is part of the known enumeration
func (k FeatureKey) Valid() bool {
	switch k {
	case FeatureCrypto, FeatureVirtualCards, FeatureBulkSMS, FeatureFlights, FeatureGiftCards:
		return true
	}
	return false
}

// FeatureToggle maps a feature identifier to its enabled state
type FeatureToggle struct {
	Key     FeatureKey `json:"key"`
	Enabled bool       `json:"enabled"`
}

// ToggleState is the tri-state answer to "is this feature enabled".
// Unknown is only observed before the first successful toggle fetch;
// after that an absent key is disabled (closed world).
type ToggleState string

const (
	ToggleEnabled  ToggleState = "enabled"
	ToggleDisabled ToggleState = "disabled"
	ToggleUnknown  ToggleState = "unknown"
)
