package i18n

import (
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	data := map[string]interface{}{"Reference": "PN-1", "Available": 5, "Requested": 10}

	tests := []struct {
		lang string
		want string
	}{
		{"en", "Not enough stock for part PN-1: 5 on hand, 10 requested"},
		{"en-US,en;q=0.9", "Not enough stock for part PN-1"},
		{"id", "Stok part PN-1 tidak cukup"},
		{"", "Stok part PN-1 tidak cukup"},
	}
	for _, tt := range tests {
		got := Translate(tt.lang, "insufficient_stock", data)
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("Translate(%q) = %q, want prefix %q", tt.lang, got, tt.want)
		}
	}
}

func TestTranslateUnknownMessage(t *testing.T) {
	if got := Translate("en", "no_such_message", nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
