package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted from the case service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	CaseName  string    `json:"case_name"`
	Version   int       `json:"version,omitempty"`
	Amendment string    `json:"amendment,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	// Client is a short "browser version on os" description parsed from UserAgent.
	Client string `json:"client,omitempty"`
}

type Action string

const (
	EventCaseCreated       Action = "case_created"
	EventCaseAmended       Action = "case_amended"
	EventAmendmentRejected Action = "amendment_rejected"
	EventCaseUpdated       Action = "case_updated"
	EventCaseDeleted       Action = "case_deleted"
)
