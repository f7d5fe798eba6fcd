// Package stats persists the audit history of authority changes and tracks
// the progress of the link updates each change triggered.
package stats

import (
	"time"

	"github.com/google/uuid"

	id "authlinks/pkg/domain"
)

// Action is what an authority change did to its links.
type Action string

const (
	ActionUpdateHeading   Action = "UPDATE_HEADING"
	ActionUpdateNaturalID Action = "UPDATE_NATURAL_ID"
	ActionDelete          Action = "DELETE"
)

// Status is the lifecycle state of a data stat.
type Status string

const (
	StatusInProgress          Status = "IN_PROGRESS"
	StatusCompletedSuccess    Status = "COMPLETED_SUCCESS"
	StatusCompletedWithErrors Status = "COMPLETED_WITH_ERRORS"
	StatusFailed              Status = "FAILED"
)

// DataStat is the audit record of one authority change. Its id doubles as the
// job id of the link-update notification sent for the change.
type DataStat struct {
	ID              id.JobID       `json:"id"`
	AuthorityID     id.AuthorityID `json:"authorityId"`
	Action          Action         `json:"action"`
	NaturalIDOld    string         `json:"naturalIdOld,omitempty"`
	NaturalIDNew    string         `json:"naturalIdNew,omitempty"`
	HeadingOld      string         `json:"headingOld,omitempty"`
	HeadingNew      string         `json:"headingNew,omitempty"`
	HeadingTypeOld  string         `json:"headingTypeOld,omitempty"`
	HeadingTypeNew  string         `json:"headingTypeNew,omitempty"`
	SourceFileOld   *uuid.UUID     `json:"sourceFileOld,omitempty"`
	SourceFileNew   *uuid.UUID     `json:"sourceFileNew,omitempty"`
	LbTotal         int            `json:"lbTotal"`
	LbUpdated       int            `json:"lbUpdated"`
	LbFailed        int            `json:"lbFailed"`
	Status          Status         `json:"status"`
	FailCause       string         `json:"failCause,omitempty"`
	StartedByUserID *id.UserID     `json:"startedByUserId,omitempty"`
	StartedAt       time.Time      `json:"startedAt"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
	OriginJobID     *id.JobID      `json:"originJobId,omitempty"`
}

// CopyForMember returns a fresh stat for a consortium member tenant. The copy
// has no id and points back at the stat it was copied from.
func (s DataStat) CopyForMember() DataStat {
	cp := s
	origin := s.ID
	if s.OriginJobID != nil {
		origin = *s.OriginJobID
	}
	cp.ID = id.JobID{}
	cp.OriginJobID = &origin
	cp.LbUpdated = 0
	cp.LbFailed = 0
	cp.Status = ""
	cp.FailCause = ""
	cp.CompletedAt = nil
	return cp
}

// IsComplete reports that every link of the job has an outcome.
func (s DataStat) IsComplete() bool {
	return s.LbUpdated+s.LbFailed == s.LbTotal
}
