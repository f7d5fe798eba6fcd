// Package diff computes field-level differences between two authority
// snapshots.
package diff

import (
	"log/slog"
	"reflect"
	"slices"

	"authlinks/internal/authority/models"
)

// Computer compares snapshots over the trackable field set. It holds no state
// beyond its logger and is safe for concurrent use.
type Computer struct {
	logger *slog.Logger
}

type Option func(*Computer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Computer) {
		c.logger = logger
	}
}

func New(opts ...Option) *Computer {
	c := &Computer{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute returns every trackable field whose value differs between old and
// updated, including fields present on one side only. Attributes outside the
// trackable set are ignored. Neither snapshot is modified.
func (c *Computer) Compute(old, updated *models.Snapshot) models.Changes {
	oldValues := old.Values()
	newValues := updated.Values()

	keys := make([]string, 0, len(oldValues)+len(newValues))
	for k := range oldValues {
		keys = append(keys, k)
	}
	for k := range newValues {
		if _, seen := oldValues[k]; !seen {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	changes := make(models.Changes)
	for _, key := range keys {
		oldValue, inOld := oldValues[key]
		newValue, inNew := newValues[key]
		if inOld && inNew && reflect.DeepEqual(oldValue, newValue) {
			continue
		}

		field, ok := models.FieldByName(key)
		if !ok {
			c.logger.Debug("not supported authority change", "field_name", key)
			continue
		}
		changes[field] = models.FieldChange{Field: field, Old: oldValue, New: newValue}
	}
	return changes
}
