package models

import (
	"time"

	"github.com/google/uuid"

	id "authlinks/pkg/domain"
)

// EventType is the kind of change reported by the upstream source. The same
// values name the classified change type.
type EventType string

const (
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

func (t EventType) Valid() bool {
	return t == EventUpdate || t == EventDelete
}

// DeleteSubType distinguishes soft from hard deletes.
type DeleteSubType string

const (
	SoftDelete DeleteSubType = "SOFT_DELETE"
	HardDelete DeleteSubType = "HARD_DELETE"
)

// Event is one authority change as delivered by the transport.
type Event struct {
	ID            id.AuthorityID
	Type          EventType
	DeleteSubType DeleteSubType
	Old           *Snapshot
	New           *Snapshot
	Tenant        id.TenantID
	UserID        id.UserID
}

// FieldChange is the before and after value of one trackable field. A nil
// side means the field was absent.
type FieldChange struct {
	Field Field
	Old   any
	New   any
}

// Changes is a field-level diff.
type Changes map[Field]FieldChange

// Clone returns an independent copy of c.
func (c Changes) Clone() Changes {
	if c == nil {
		return nil
	}
	out := make(Changes, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// SourceRecord is the full current source content of an authority, attached
// to UPDATE notifications.
type SourceRecord struct {
	AuthorityID id.AuthorityID `json:"authorityId"`
	RecordID    uuid.UUID      `json:"recordId"`
	Content     map[string]any `json:"content,omitempty"`
}

// Notification is the outbound link-update message for one authority.
type Notification struct {
	JobID        id.JobID       `json:"jobId"`
	Type         EventType      `json:"type"`
	Tenant       id.TenantID    `json:"tenant"`
	AuthorityID  id.AuthorityID `json:"authorityId"`
	NaturalIDOld string         `json:"naturalIdOld,omitempty"`
	NaturalIDNew string         `json:"naturalIdNew,omitempty"`
	HeadingTag   string         `json:"headingTag,omitempty"`
	LinkCount    int            `json:"linkCount"`
	SourceRecord *SourceRecord  `json:"sourceRecord,omitempty"`
	Timestamp    time.Time      `json:"ts"`
}

// ReportStatus is the outcome the bib-link updater reports for a job part.
type ReportStatus string

const (
	ReportSuccess ReportStatus = "SUCCESS"
	ReportFail    ReportStatus = "FAIL"
)

// LinkUpdateReport is sent back by the bib-link updater for a notification.
type LinkUpdateReport struct {
	Tenant     id.TenantID   `json:"tenant"`
	JobID      id.JobID      `json:"jobId"`
	InstanceID id.InstanceID `json:"instanceId"`
	Status     ReportStatus  `json:"status"`
	FailCause  string        `json:"failCause,omitempty"`
	LinkIDs    []int64       `json:"linkIds,omitempty"`
}

// LinkStatus is the state of one instance-authority link.
type LinkStatus string

const (
	LinkActual LinkStatus = "ACTUAL"
	LinkError  LinkStatus = "ERROR"
)

// LinkStatusFor maps a report outcome to the link state it implies.
func LinkStatusFor(s ReportStatus) LinkStatus {
	if s == ReportFail {
		return LinkError
	}
	return LinkActual
}
