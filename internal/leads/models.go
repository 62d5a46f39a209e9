package leads

import (
	"strings"
	"time"
)

type Lead struct {
	ID              string     `db:"id" json:"id"`
	ClientID        *string    `db:"client_id" json:"client_id"`
	FirstName       *string    `db:"first_name" json:"first_name"`
	LastName        *string    `db:"last_name" json:"last_name"`
	Name            *string    `db:"name" json:"name"`
	Email           *string    `db:"email" json:"email"`
	Phone           *string    `db:"phone" json:"phone"`
	Address         *string    `db:"address" json:"address"`
	Source          *string    `db:"source" json:"source"`
	Service         *string    `db:"service" json:"service"`
	Urgency         *string    `db:"urgency" json:"urgency"`
	Status          *string    `db:"status" json:"status"`
	Score           *int       `db:"score" json:"score"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	LastContactedAt *time.Time `db:"last_contacted_at" json:"last_contacted_at"`
}

// DisplayName picks the first non-blank of name, "first last" and phone.
func (l Lead) DisplayName() string {
	if n := trimmed(l.Name); n != "" {
		return n
	}
	full := strings.TrimSpace(trimmed(l.FirstName) + " " + trimmed(l.LastName))
	if full != "" {
		return full
	}
	if p := trimmed(l.Phone); p != "" {
		return p
	}
	return "Unknown"
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// CreateLeadRequest is the body of POST /api/leads. Presence of email and source is
// enforced before binding.
type CreateLeadRequest struct {
	Email     string  `json:"email"`
	Source    string  `json:"source"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type ListFilter struct {
	Limit int `form:"limit"`
}
