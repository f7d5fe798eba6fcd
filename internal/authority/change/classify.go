package change

import (
	"errors"

	"authlinks/internal/authority/models"
	dErrors "authlinks/pkg/domain-errors"
)

// ErrNoChanges is returned for events whose diff is empty. It marks a
// legitimate no-op and callers drop the event silently.
var ErrNoChanges = errors.New("no trackable changes")

// Classify builds the Record for event with its diff and the link count of the
// current tenant. Malformed events are rejected with a validation error.
func Classify(event models.Event, changes models.Changes, linkCount int) (Record, error) {
	if err := validate(event); err != nil {
		return Record{}, err
	}
	if len(changes) == 0 {
		return Record{}, ErrNoChanges
	}
	return Record{
		event:     event,
		changes:   changes.Clone(),
		linkCount: linkCount,
	}, nil
}

func validate(event models.Event) error {
	if event.ID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "authority id is required")
	}
	switch event.Type {
	case models.EventUpdate:
		if event.New == nil {
			return dErrors.New(dErrors.CodeValidation, "update event without new snapshot")
		}
	case models.EventDelete:
		if event.Old == nil {
			return dErrors.New(dErrors.CodeValidation, "delete event without old snapshot")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown event type "+string(event.Type))
	}
	return nil
}

// GroupByType splits records by ChangeType, preserving order within each group.
// Types are returned in a stable order: UPDATE before DELETE.
func GroupByType(records []Record) ([]Type, map[Type][]Record) {
	groups := make(map[Type][]Record)
	for _, r := range records {
		t := r.ChangeType()
		groups[t] = append(groups[t], r)
	}
	var order []Type
	for _, t := range []Type{TypeUpdate, TypeDelete} {
		if len(groups[t]) > 0 {
			order = append(order, t)
		}
	}
	return order, groups
}
