package model

// BackendKind identifies which third-party subscription system the store runs.
type BackendKind string

const (
	BackendWCS         BackendKind = "wcs"
	BackendWebToffee   BackendKind = "webtoffee"
	BackendYITH        BackendKind = "yith"
	BackendSUMO        BackendKind = "sumo"
	BackendPluginsHive BackendKind = "pluginshive"
)

// DetectionOrder is the probe priority. The official plugin wins when more
// than one backend leaves markers behind; this is a policy choice, not an
// automatic precedence.
var DetectionOrder = []BackendKind{
	BackendWCS,
	BackendWebToffee,
	BackendYITH,
	BackendSUMO,
	BackendPluginsHive,
}

func (k BackendKind) DisplayName() string {
	switch k {
	case BackendWCS:
		return "WooCommerce Subscriptions"
	case BackendWebToffee:
		return "WebToffee Subscriptions"
	case BackendYITH:
		return "YITH WooCommerce Subscriptions"
	case BackendSUMO:
		return "SUMO Subscriptions"
	case BackendPluginsHive:
		return "Plugins Hive Subscriptions"
	}
	return "Unknown"
}

func (k BackendKind) Valid() bool {
	switch k {
	case BackendWCS, BackendWebToffee, BackendYITH, BackendSUMO, BackendPluginsHive:
		return true
	}
	return false
}

// StatusChange is the one internal shape every backend's raw status signal is
// translated into at the boundary.
type StatusChange struct {
	SubscriptionID string
	From           string
	To             string
	Backend        BackendKind
}
