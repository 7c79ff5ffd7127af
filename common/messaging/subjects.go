// Package messaging defines standard subject names for the Gavel message bus.
package messaging

// Subject constants for the Gavel message bus.
// One subject per domain event type.
const (
	// Auction lifecycle subjects - published by the auction service after
	// each successful mutation of the authoritative record.
	SubjectAuctionCreated = "auction.created"
	SubjectAuctionUpdated = "auction.updated"
	SubjectAuctionDeleted = "auction.deleted"
)

// FaultPrefix is prepended to a subject to form its implicit fault channel.
// A consumer that exhausts its delivery attempts has the offending envelope
// rerouted there with the failure classification attached.
const FaultPrefix = "fault."

// FaultSubject returns the fault channel for the given subject.
// Example: fault.auction.created
func FaultSubject(subject string) string {
	return FaultPrefix + subject
}

// Queue group names for load-balanced consumers.
// Workers in the same queue group share messages (each message processed once).
const (
	QueueSearchProjectors = "search-projectors" // Read-model projection workers
	QueueFaultHandlers    = "fault-handlers"    // Compensation workers
)
