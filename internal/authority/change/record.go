// Package change classifies authority diffs into actionable changes.
//
// A Record is an immutable value. Every "setter" returns a modified copy, so
// a record handed to a member tenant can never share its link count, data
// stat id or attached source record with the original.
package change

import (
	"github.com/google/uuid"

	"authlinks/internal/authority/models"
	id "authlinks/pkg/domain"
)

// Type is the classified change type: what the downstream link updater must
// do, which can differ from the upstream event kind.
type Type = models.EventType

const (
	TypeUpdate = models.EventUpdate
	TypeDelete = models.EventDelete
)

// Record is one classified authority change in one tenant context.
type Record struct {
	event        models.Event
	changes      models.Changes
	linkCount    int
	statID       id.JobID
	sourceRecord *models.SourceRecord
}

func (r Record) AuthorityID() id.AuthorityID { return r.event.ID }

// Event returns the originating event.
func (r Record) Event() models.Event { return r.event }

// Changes returns a copy of the field-level diff.
func (r Record) Changes() models.Changes { return r.changes.Clone() }

func (r Record) LinkCount() int { return r.linkCount }

// StatID returns the id of the data stat persisted for this record. It doubles
// as the job id of the outbound notification.
func (r Record) StatID() (id.JobID, bool) { return r.statID, !r.statID.IsNil() }

func (r Record) SourceRecord() *models.SourceRecord { return r.sourceRecord }

func (r Record) NaturalIDOld() string {
	if r.event.Old == nil {
		return ""
	}
	return r.event.Old.NaturalID
}

func (r Record) NaturalIDNew() string {
	if r.event.New == nil {
		return ""
	}
	return r.event.New.NaturalID
}

func (r Record) SourceFileOld() *uuid.UUID {
	if r.event.Old == nil {
		return nil
	}
	return r.event.Old.SourceFileID
}

func (r Record) SourceFileNew() *uuid.UUID {
	if r.event.New == nil {
		return nil
	}
	return r.event.New.SourceFileID
}

// ChangeType is DELETE for delete events and for updates that switch the
// heading category, UPDATE otherwise.
func (r Record) ChangeType() Type {
	if r.event.Type == models.EventDelete || r.IsHeadingTypeChanged() {
		return TypeDelete
	}
	return TypeUpdate
}

func (r Record) IsNaturalIDChanged() bool {
	_, ok := r.changes[models.FieldNaturalID]
	return ok
}

// IsOnlyNaturalIDChange reports a pure rename.
func (r Record) IsOnlyNaturalIDChange() bool {
	return len(r.changes) == 1 && r.IsNaturalIDChanged()
}

// IsHeadingTypeChanged reports that two or more fields besides the natural id
// changed, meaning the authority moved to another heading category.
func (r Record) IsHeadingTypeChanged() bool {
	n := len(r.changes)
	return n > 2 || (n == 2 && !r.IsNaturalIDChanged())
}

// IsProcessable gates all side effects: soft deletes always qualify, hard
// deletes never do, and updates only when the authority has links.
func (r Record) IsProcessable() bool {
	switch r.event.Type {
	case models.EventDelete:
		return r.event.DeleteSubType == models.SoftDelete
	case models.EventUpdate:
		return r.linkCount > 0
	default:
		return false
	}
}

// HeadingField returns the first changed heading field in enumeration order.
func (r Record) HeadingField() (models.Field, bool) {
	for _, f := range models.HeadingFields() {
		if _, ok := r.changes[f]; ok {
			return f, true
		}
	}
	return 0, false
}

// HeadingChanges returns the changed heading fields, natural id excluded, in
// enumeration order.
func (r Record) HeadingChanges() []models.FieldChange {
	var out []models.FieldChange
	for _, f := range models.HeadingFields() {
		if c, ok := r.changes[f]; ok {
			out = append(out, c)
		}
	}
	return out
}

// StartedBy returns the user recorded on the new snapshot, if any.
func (r Record) StartedBy() (id.UserID, bool) {
	return r.event.New.UpdatedBy()
}

func (r Record) WithLinkCount(n int) Record {
	r.changes = r.changes.Clone()
	r.linkCount = n
	return r
}

func (r Record) WithStatID(statID id.JobID) Record {
	r.changes = r.changes.Clone()
	r.statID = statID
	return r
}

func (r Record) WithSourceRecord(sr *models.SourceRecord) Record {
	r.changes = r.changes.Clone()
	r.sourceRecord = sr
	return r
}

// CopyForTenant returns a copy for re-evaluation in another tenant: the diff
// is deep-copied and the link count, data stat id and source record reset.
func (r Record) CopyForTenant(tenant id.TenantID) Record {
	cp := Record{
		event:   r.event,
		changes: r.changes.Clone(),
	}
	cp.event.Tenant = tenant
	return cp
}
