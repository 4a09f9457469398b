package seedgen

import "time"

// Config holds configuration for the catalog seed run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumUsers   int           // Number of users to generate
	NumEvents  int           // Number of events to generate
	NumTickets int           // Number of tickets to generate
	SampleSize int           // Number of users to fetch recommendations for
	Limit      int           // Page size requested per recommendation fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for the generated catalog
	LogFile    string        // Log file for seed output
	Verbose    bool          // Enable verbose logging
}

// userPayload mirrors the POST /catalog/users request body.
type userPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Interests []string `json:"interests"`
	City      string   `json:"city"`
	CreatedAt string   `json:"created_at"`
}

// eventPayload mirrors the POST /catalog/events request body.
type eventPayload struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	City     string   `json:"city"`
	Featured bool     `json:"featured"`
	Status   string   `json:"status"`
	StartsAt string   `json:"starts_at"`
}

// ticketPayload mirrors the POST /catalog/tickets request body.
type ticketPayload struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
	BoughtAt string `json:"bought_at"`
}

// Catalog is the full generated data set.
type Catalog struct {
	Users   []userPayload   `json:"users"`
	Events  []eventPayload  `json:"events"`
	Tickets []ticketPayload `json:"tickets"`
}

// ackResponse represents the response from catalog submission.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// recommendation is one entry of a recommendations page.
type recommendation struct {
	EventID string   `json:"event_id"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
	Rank    int      `json:"rank"`
	BasedOn string   `json:"based_on"`
}

// recommendationsResponse represents the GET /recommendations/{id} body.
type recommendationsResponse struct {
	Recommendations []recommendation `json:"recommendations"`
}

// page pairs a user with the recommendations returned for them.
type page struct {
	UserID  string
	Entries []recommendation
}

// Stats holds seed run statistics.
type Stats struct {
	UsersGenerated     int
	EventsGenerated    int
	TicketsGenerated   int
	RecordsSubmitted   int
	RecordsSuccessful  int
	RecordsDuplicate   int
	RecordsFailed      int
	PagesRetrieved     int
	RecommendationsSum int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
