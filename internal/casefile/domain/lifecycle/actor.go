package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the workflow role a user acts under.
type Role string

const (
	RolePolice     Role = "POLICE"
	RoleSHO        Role = "SHO"
	RoleCourtClerk Role = "COURT_CLERK"
	RoleJudge      Role = "JUDGE"
)

// ParseRole validates a raw string against the known roles.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RolePolice, RoleSHO, RoleCourtClerk, RoleJudge:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor identifies the user attempting a transition.
type Actor struct {
	ID             uuid.UUID
	Role           Role
	OrganizationID uuid.UUID
}
