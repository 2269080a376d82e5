package web

import "net/url"

// cancelParams lists the query parameters the supported subscription
// systems put in their cancel links, checked in order.
var cancelParams = []string{
	"subscription_id", // WooCommerce Subscriptions, WebToffee
	"sub_id",          // YITH
	"subscription",    // generic/order-based links
	"sumo_sub_id",     // SUMO
}

// ParseCancelURL pulls a subscription ID out of a storefront cancel link.
// Returns "" when the URL carries none of the known parameters; callers
// fall back to the data-attribute the interceptor script reads off the
// clicked element.
func ParseCancelURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, p := range cancelParams {
		if v := q.Get(p); v != "" {
			return v
		}
	}
	return ""
}
