package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService   = "service"
	FieldSeller    = "seller"
	FieldAuctionID = "auction_id"
	FieldEventType = "event_type"
	FieldSubject   = "subject"
	FieldAttempt   = "attempt"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Seller returns a slog attribute for the seller identity.
func Seller(name string) slog.Attr {
	return slog.String(FieldSeller, name)
}

// AuctionID returns a slog attribute for the auction identifier.
func AuctionID(id string) slog.Attr {
	return slog.String(FieldAuctionID, id)
}

// EventType returns a slog attribute for the domain event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Subject returns a slog attribute for the bus subject.
func Subject(s string) slog.Attr {
	return slog.String(FieldSubject, s)
}

// Attempt returns a slog attribute for a delivery attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(FieldAttempt, n)
}

// ClientIP returns a slog attribute for the caller's network address.
func ClientIP(ip string) slog.Attr {
	return slog.String(FieldClientIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
