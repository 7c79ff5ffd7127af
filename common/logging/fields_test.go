package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantKey  string
		wantText string
	}{
		{"service", Service("auction"), FieldService, "auction"},
		{"seller", Seller("alice"), FieldSeller, "alice"},
		{"auction id", AuctionID("abc-123"), FieldAuctionID, "abc-123"},
		{"event type", EventType("auction.created"), FieldEventType, "auction.created"},
		{"subject", Subject("auction.updated"), FieldSubject, "auction.updated"},
		{"method", Method("POST"), FieldMethod, "POST"},
		{"path", Path("/auctions"), FieldPath, "/auctions"},
		{"error", Error(errors.New("boom")), FieldError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("expected key %q, got %q", tt.wantKey, tt.attr.Key)
			}
			if got := tt.attr.Value.String(); got != tt.wantText {
				t.Errorf("expected value %q, got %q", tt.wantText, got)
			}
		})
	}
}

func TestIntFieldHelpers(t *testing.T) {
	if attr := Status(404); attr.Value.Int64() != 404 {
		t.Errorf("expected status 404, got %d", attr.Value.Int64())
	}
	if attr := Attempt(3); attr.Value.Int64() != 3 {
		t.Errorf("expected attempt 3, got %d", attr.Value.Int64())
	}
}
