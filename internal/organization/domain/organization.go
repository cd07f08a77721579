// Package domain models organizations (police stations and courts) and their
// users. The data is read-mostly; user and organization management is done by
// seeding or administrative tooling, not by this service's workflows.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmptyName            = errors.New("name cannot be empty")
)

// Kind distinguishes police stations from courts.
type Kind string

const (
	KindPoliceStation Kind = "POLICE_STATION"
	KindCourt         Kind = "COURT"
)

// ParseKind validates a raw organization kind.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindPoliceStation, KindCourt:
		return k, nil
	default:
		return "", fmt.Errorf("unknown organization kind %q", raw)
	}
}

// Organization is a police station or a court.
type Organization struct {
	sharedDomain.BaseEntity
	name     string
	kind     Kind
	district string
}

// NewOrganization creates an organization.
func NewOrganization(name string, kind Kind, district string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Organization{
		BaseEntity: sharedDomain.NewBaseEntity(),
		name:       name,
		kind:       kind,
		district:   district,
	}, nil
}

// RehydrateOrganization recreates an organization from persisted state.
func RehydrateOrganization(entity sharedDomain.BaseEntity, name string, kind Kind, district string) *Organization {
	return &Organization{BaseEntity: entity, name: name, kind: kind, district: district}
}

func (o *Organization) Name() string     { return o.name }
func (o *Organization) Kind() Kind       { return o.kind }
func (o *Organization) District() string { return o.district }
func (o *Organization) IsCourt() bool    { return o.kind == KindCourt }

// User is an actor account bound to an organization and a workflow role.
type User struct {
	sharedDomain.BaseEntity
	name           string
	email          string
	role           lifecycle.Role
	organizationID uuid.UUID
}

// NewUser creates a user.
func NewUser(name, email string, role lifecycle.Role, organizationID uuid.UUID) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &User{
		BaseEntity:     sharedDomain.NewBaseEntity(),
		name:           name,
		email:          email,
		role:           role,
		organizationID: organizationID,
	}, nil
}

// RehydrateUser recreates a user from persisted state.
func RehydrateUser(entity sharedDomain.BaseEntity, name, email string, role lifecycle.Role, organizationID uuid.UUID) *User {
	return &User{BaseEntity: entity, name: name, email: email, role: role, organizationID: organizationID}
}

func (u *User) Name() string              { return u.name }
func (u *User) Email() string             { return u.email }
func (u *User) Role() lifecycle.Role      { return u.role }
func (u *User) OrganizationID() uuid.UUID { return u.organizationID }

// Actor converts the user into a lifecycle actor.
func (u *User) Actor() lifecycle.Actor {
	return lifecycle.Actor{ID: u.ID(), Role: u.role, OrganizationID: u.organizationID}
}

// OrganizationRepository persists organizations.
type OrganizationRepository interface {
	Save(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindByKind(ctx context.Context, kind Kind) ([]*Organization, error)
}

// UserRepository persists users.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*User, error)
	FindByRole(ctx context.Context, organizationID uuid.UUID, role lifecycle.Role) ([]*User, error)
}
