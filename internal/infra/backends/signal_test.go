// File: internal/infra/backends/signal_test.go
package backends

import (
	"testing"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
)

func testBackend(t *testing.T, kind model.BackendKind) adapter.SubscriptionBackend {
	t.Helper()
	log := zerolog.Nop()
	be, err := New(kind, Deps{Logger: &log})
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	return be
}

func TestTranslateSignal_NormalizesPerBackend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind    model.BackendKind
		channel string
	}{
		{model.BackendWCS, "shop_subscription_status"},
		{model.BackendWebToffee, "wt_subscription_status"},
		{model.BackendWebToffee, "wc_order_status"},
		{model.BackendYITH, "ywsbs_subscription_status"},
		{model.BackendSUMO, "sumo_subscription_status"},
		{model.BackendPluginsHive, "wc_order_status"},
	}
	for _, tc := range cases {
		be := testBackend(t, tc.kind)
		change, ok := be.TranslateSignal(tc.channel, `{"id":"42","from":"active","to":"on-hold"}`)
		if !ok {
			t.Fatalf("%s: signal on %s not translated", tc.kind, tc.channel)
		}
		want := model.StatusChange{SubscriptionID: "42", From: "active", To: "on-hold", Backend: tc.kind}
		if change != want {
			t.Fatalf("%s: got %+v, want %+v", tc.kind, change, want)
		}
	}
}

func TestTranslateSignal_IgnoresForeignChannelsAndGarbage(t *testing.T) {
	t.Parallel()

	be := testBackend(t, model.BackendWCS)
	if _, ok := be.TranslateSignal("sumo_subscription_status", `{"id":"42","to":"Cancelled"}`); ok {
		t.Fatal("wcs backend must ignore sumo channel")
	}
	if _, ok := be.TranslateSignal("shop_subscription_status", `not json`); ok {
		t.Fatal("malformed payload must not translate")
	}
	if _, ok := be.TranslateSignal("shop_subscription_status", `{"from":"a","to":"b"}`); ok {
		t.Fatal("payload without an id must not translate")
	}
}

func TestTerminal_SpellingsPerBackend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind     model.BackendKind
		terminal []string
		alive    []string
	}{
		{model.BackendWCS, []string{"cancelled", "wc-cancelled"}, []string{"active", "on-hold", "expired"}},
		{model.BackendWebToffee, []string{"cancelled", "cancel", "wc-cancelled"}, []string{"wc-active", "wc-on-hold"}},
		{model.BackendYITH, []string{"cancelled", "cancel", "expired"}, []string{"active", "paused"}},
		{model.BackendSUMO, []string{"Cancelled"}, []string{"cancelled", "Active", "Pause"}},
		{model.BackendPluginsHive, []string{"cancelled", "wc-cancelled"}, []string{"active"}},
	}
	for _, tc := range cases {
		be := testBackend(t, tc.kind)
		for _, s := range tc.terminal {
			if !be.Terminal(s) {
				t.Fatalf("%s: %q should be terminal", tc.kind, s)
			}
		}
		for _, s := range tc.alive {
			if be.Terminal(s) {
				t.Fatalf("%s: %q should not be terminal", tc.kind, s)
			}
		}
	}
}

func TestCancelSelectors_CoverEveryBackend(t *testing.T) {
	t.Parallel()

	selectors := CancelSelectors()
	if len(selectors) == 0 {
		t.Fatal("no cancel selectors")
	}
	seen := map[string]bool{}
	for _, s := range selectors {
		seen[s] = true
	}
	for _, want := range []string{
		`a[href*="cancel_subscription"]`,
		`a.wt-subscription-cancel`,
		`a[href*="ywsbs-action=cancel"]`,
		`a[href*="sumo_sub_action=cancel"]`,
		`a[href*="rp_sub_action=cancel"]`,
	} {
		if !seen[want] {
			t.Fatalf("selector list missing %q", want)
		}
	}
}
