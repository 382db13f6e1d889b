package credentials

import (
	"time"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/google/uuid"
)

const (
	MaxEmailLength    = 256
	MaxPasswordLength = 1024
	MaxListLimit      = 100
	MaxRoleFilters    = 10
)

// Credentials is the durable identity record behind an account.
type Credentials struct {
	ID        uuid.UUID    `json:"id"`
	Email     string       `json:"email"`
	Role      session.Role `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ListFilter bounds are enforced by the core: limit defaults to and is
// capped at MaxListLimit, offset defaults to 0.
type ListFilter struct {
	Limit  int            `validate:"omitempty,min=0,max=100"`
	Offset int            `validate:"min=0"`
	Roles  []session.Role `validate:"max=10"`
}
