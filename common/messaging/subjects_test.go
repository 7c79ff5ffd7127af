package messaging

import "testing"

func TestFaultSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{SubjectAuctionCreated, "fault.auction.created"},
		{SubjectAuctionUpdated, "fault.auction.updated"},
		{SubjectAuctionDeleted, "fault.auction.deleted"},
	}

	for _, tt := range tests {
		if got := FaultSubject(tt.subject); got != tt.want {
			t.Errorf("FaultSubject(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestSubjectNaming(t *testing.T) {
	// Subjects follow {domain}.{event}; fault channels mirror them under
	// the fault. prefix so compensators can filter with fault.auction.>
	subjects := []string{SubjectAuctionCreated, SubjectAuctionUpdated, SubjectAuctionDeleted}
	seen := make(map[string]bool)
	for _, s := range subjects {
		if seen[s] {
			t.Errorf("duplicate subject %q", s)
		}
		seen[s] = true
	}
}
