// Package domain holds typed identifiers shared across bounded contexts.
//
// Identifiers are parsed once at trust boundaries (Kafka records, HTTP
// responses from peer modules) so services never handle raw strings.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "authlinks/pkg/domain-errors"
)

// TenantID identifies a tenant. Tenant ids double as schema and topic name
// fragments, so the allowed alphabet is deliberately narrow.
type TenantID string

// UserID identifies the acting user a unit of work is executed for.
type UserID uuid.UUID

// AuthorityID identifies an authority record.
type AuthorityID uuid.UUID

// JobID identifies a link-update job. It equals the id of the authority data
// stat created for the change that started the job.
type JobID uuid.UUID

// InstanceID identifies a bibliographic instance.
type InstanceID uuid.UUID

var tenantPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ParseTenantID validates a tenant id from external input.
func ParseTenantID(s string) (TenantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if !tenantPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid tenant id")
	}
	return TenantID(s), nil
}

func (t TenantID) String() string { return string(t) }
func (t TenantID) IsNil() bool    { return t == "" }

func parseUUID(s, name string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, name+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+name)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, name+" must not be nil")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseAuthorityID(s string) (AuthorityID, error) {
	u, err := parseUUID(s, "authority id")
	return AuthorityID(u), err
}

func ParseJobID(s string) (JobID, error) {
	u, err := parseUUID(s, "job id")
	return JobID(u), err
}

func ParseInstanceID(s string) (InstanceID, error) {
	u, err := parseUUID(s, "instance id")
	return InstanceID(u), err
}

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id AuthorityID) String() string { return uuid.UUID(id).String() }
func (id AuthorityID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id JobID) String() string       { return uuid.UUID(id).String() }
func (id JobID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id InstanceID) String() string  { return uuid.UUID(id).String() }
func (id InstanceID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// MarshalText and UnmarshalText let the UUID-backed ids travel through JSON
// payloads and map keys unchanged.

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id AuthorityID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *AuthorityID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id JobID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *JobID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id InstanceID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *InstanceID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
