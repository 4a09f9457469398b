package model

// RecordKind discriminates catalog ingestion envelopes.
type RecordKind string

// Record kinds accepted by the ingestion pipeline.
const (
	RecordUser   RecordKind = "user"
	RecordEvent  RecordKind = "event"
	RecordTicket RecordKind = "ticket"
)

// Record is the envelope flowing through the ingestion queue. Exactly
// one payload field is populated, per Kind.
type Record struct {
	Kind   RecordKind
	User   UserProfile
	Event  Event
	Ticket Ticket
}

// ID returns the kind-qualified identifier of the wrapped payload, used
// for idempotency tracking. Qualifying by kind keeps a user and an
// event that share an ID from shadowing each other.
func (r Record) ID() string {
	switch r.Kind {
	case RecordUser:
		return "user:" + r.User.ID
	case RecordEvent:
		return "event:" + r.Event.ID
	case RecordTicket:
		return "ticket:" + r.Ticket.ID
	default:
		return ""
	}
}
