package contract

import "testing"

func TestParseIntent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Intent
	}{
		{"greet", IntentGreet},
		{" Checkout ", IntentCheckout},
		{"ADD_TO_CART", IntentAddToCart},
		{"order_stuff", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tc := range cases {
		if got := ParseIntent(tc.raw); got != tc.want {
			t.Errorf("ParseIntent(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
