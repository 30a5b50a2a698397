// Package domain defines the core entities shared across slidegen components.
package domain

// Status is the server-reported lifecycle state of a generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// rank orders statuses along the pending → processing → terminal progression.
// Unknown statuses rank below pending so they are never treated as progress.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusProcessing:
		return 2
	case StatusCompleted, StatusFailed:
		return 3
	}
	return 0
}

// Before reports whether s precedes other in the lifecycle ordering.
// A job's status must never move backwards.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// SlidePreview is a single slide title from the status payload.
type SlidePreview struct {
	Title string `json:"title"`
}

// Presentation is one generation job as reported by the backend.
// Status transitions are server-authoritative; the client only mirrors them.
type Presentation struct {
	ID            string         `json:"presentation_id"`
	Topic         string         `json:"topic"`
	Status        Status         `json:"status"`
	CreatedAt     string         `json:"created_at"`
	SlideCount    int            `json:"slide_count"`
	Error         string         `json:"error,omitempty"`
	DownloadURL   string         `json:"download_url,omitempty"`
	SlidesPreview []SlidePreview `json:"slides_preview,omitempty"`
}

// Summary is the list-view projection of a presentation.
type Summary struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	Status     Status `json:"status"`
	CreatedAt  string `json:"created_at"`
	SlideCount int    `json:"slide_count"`
}

// Summarize projects a full presentation onto its list-view shape.
func (p *Presentation) Summarize() Summary {
	return Summary{
		ID:         p.ID,
		Topic:      p.Topic,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
		SlideCount: p.SlideCount,
	}
}

// Stats is a read-only snapshot of the user's daily usage.
type Stats struct {
	PresentationsToday int `json:"presentations_today"`
	DailyLimit         int `json:"daily_limit"`
	Remaining          int `json:"remaining"`
}

// Identity holds the two persisted client-side identifiers. Both are created
// once on first run and immutable afterwards.
type Identity struct {
	ClientID string
	UserID   string
}

// Preferences are the generation options sent with a generate request.
type Preferences struct {
	SlideCount int    `json:"slide_count"`
	Industry   string `json:"industry,omitempty"`
	Audience   string `json:"audience,omitempty"`
}

// SlideCountChoices are the slide counts the backend accepts.
var SlideCountChoices = []int{5, 10, 15, 20, 25}

// DefaultSlideCount is used when the user does not pick a count.
const DefaultSlideCount = 10
