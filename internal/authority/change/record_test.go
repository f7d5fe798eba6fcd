package change

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"authlinks/internal/authority/models"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/testutil"
)

func updateEvent(oldNaturalID, newNaturalID string) models.Event {
	return models.Event{
		ID:     id.AuthorityID(uuid.New()),
		Type:   models.EventUpdate,
		Old:    &models.Snapshot{NaturalID: oldNaturalID},
		New:    &models.Snapshot{NaturalID: newNaturalID},
		Tenant: "diku",
	}
}

func deleteEvent(sub models.DeleteSubType) models.Event {
	return models.Event{
		ID:            id.AuthorityID(uuid.New()),
		Type:          models.EventDelete,
		DeleteSubType: sub,
		Old:           &models.Snapshot{NaturalID: "n1"},
		Tenant:        "diku",
	}
}

func naturalIDChange(oldValue, newValue string) models.FieldChange {
	return models.FieldChange{Field: models.FieldNaturalID, Old: oldValue, New: newValue}
}

type ClassifySuite struct {
	suite.Suite
}

func TestClassifySuite(t *testing.T) {
	suite.Run(t, new(ClassifySuite))
}

func (s *ClassifySuite) TestNaturalIDOnlyChangeIsUpdate() {
	rec, err := Classify(updateEvent("n1", "n2"), models.Changes{
		models.FieldNaturalID: naturalIDChange("n1", "n2"),
	}, 3)
	s.Require().NoError(err)

	s.Equal(TypeUpdate, rec.ChangeType())
	s.True(rec.IsOnlyNaturalIDChange())
	s.True(rec.IsNaturalIDChanged())
	s.True(rec.IsProcessable())
	_, ok := rec.HeadingField()
	s.False(ok)
	s.Equal("n1", rec.NaturalIDOld())
	s.Equal("n2", rec.NaturalIDNew())
}

func (s *ClassifySuite) TestSingleHeadingChangeIsUpdate() {
	rec, err := Classify(updateEvent("n1", "n1"), models.Changes{
		models.FieldPersonalName: {Field: models.FieldPersonalName, Old: "Smith, J.", New: "Smith, John"},
	}, 1)
	s.Require().NoError(err)

	s.Equal(TypeUpdate, rec.ChangeType())
	s.False(rec.IsOnlyNaturalIDChange())
	f, ok := rec.HeadingField()
	s.True(ok)
	s.Equal(models.FieldPersonalName, f)
}

func (s *ClassifySuite) TestHeadingPlusNaturalIDIsUpdate() {
	rec, err := Classify(updateEvent("n1", "n2"), models.Changes{
		models.FieldNaturalID:    naturalIDChange("n1", "n2"),
		models.FieldTopicalTerm: {Field: models.FieldTopicalTerm, Old: "Cats", New: "Felines"},
	}, 1)
	s.Require().NoError(err)
	s.Equal(TypeUpdate, rec.ChangeType())
	s.False(rec.IsHeadingTypeChanged())
}

func (s *ClassifySuite) TestHeadingCategoryChangeForcesDelete() {
	rec, err := Classify(updateEvent("n1", "n1"), models.Changes{
		models.FieldPersonalName:  {Field: models.FieldPersonalName, Old: "Smith, J."},
		models.FieldCorporateName: {Field: models.FieldCorporateName, New: "Acme"},
	}, 1)
	s.Require().NoError(err)

	s.Equal(TypeDelete, rec.ChangeType())
	s.True(rec.IsHeadingTypeChanged())
	s.True(rec.IsProcessable(), "processability follows the upstream event kind")
}

func (s *ClassifySuite) TestCategoryChangeWithNaturalIDForcesDelete() {
	rec, err := Classify(updateEvent("n1", "n2"), models.Changes{
		models.FieldNaturalID:     naturalIDChange("n1", "n2"),
		models.FieldPersonalName:  {Field: models.FieldPersonalName, Old: "Smith, J."},
		models.FieldCorporateName: {Field: models.FieldCorporateName, New: "Acme"},
	}, 1)
	s.Require().NoError(err)
	s.Equal(TypeDelete, rec.ChangeType())
}

func (s *ClassifySuite) TestProcessabilityGate() {
	s.Run("update without links is not processable", func() {
		rec, err := Classify(updateEvent("n1", "n2"), models.Changes{
			models.FieldNaturalID: naturalIDChange("n1", "n2"),
		}, 0)
		s.Require().NoError(err)
		s.False(rec.IsProcessable())
	})

	s.Run("soft delete is processable without links", func() {
		rec, err := Classify(deleteEvent(models.SoftDelete), models.Changes{
			models.FieldNaturalID: naturalIDChange("n1", ""),
		}, 0)
		s.Require().NoError(err)
		s.Equal(TypeDelete, rec.ChangeType())
		s.True(rec.IsProcessable())
	})

	s.Run("hard delete is never processable", func() {
		rec, err := Classify(deleteEvent(models.HardDelete), models.Changes{
			models.FieldNaturalID: naturalIDChange("n1", ""),
		}, 10)
		s.Require().NoError(err)
		s.False(rec.IsProcessable())
	})
}

func (s *ClassifySuite) TestEmptyDiffIsDropped() {
	_, err := Classify(updateEvent("n1", "n1"), models.Changes{}, 5)
	s.ErrorIs(err, ErrNoChanges)
}

func (s *ClassifySuite) TestMalformedEventsAreRejected() {
	changes := models.Changes{models.FieldNaturalID: naturalIDChange("n1", "n2")}

	noNew := updateEvent("n1", "n2")
	noNew.New = nil
	_, err := Classify(noNew, changes, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	noOld := deleteEvent(models.SoftDelete)
	noOld.Old = nil
	_, err = Classify(noOld, changes, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	unknown := updateEvent("n1", "n2")
	unknown.Type = "CREATE"
	_, err = Classify(unknown, changes, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	noID := updateEvent("n1", "n2")
	noID.ID = id.AuthorityID{}
	_, err = Classify(noID, changes, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestCopyForTenant_NeverSharesState verifies that a record handed to a
// member tenant is independent of the original.
//
// Justification: member tenants recompute link counts and persist their own
// data stats; any shared state would leak central counts into member output.
func TestCopyForTenant_NeverSharesState(t *testing.T) {
	changes := models.Changes{models.FieldNaturalID: naturalIDChange("n1", "n2")}
	orig, err := Classify(updateEvent("n1", "n2"), changes, 2)
	require.NoError(t, err)
	statID := id.JobID(uuid.New())
	orig = orig.WithStatID(statID).WithSourceRecord(&models.SourceRecord{AuthorityID: orig.AuthorityID()})

	cp := orig.CopyForTenant("university")

	assert.Equal(t, 0, cp.LinkCount())
	_, hasStat := cp.StatID()
	assert.False(t, hasStat)
	assert.Nil(t, cp.SourceRecord())
	assert.Equal(t, id.TenantID("university"), cp.Event().Tenant)
	assert.Equal(t, id.TenantID("diku"), orig.Event().Tenant)

	cp = cp.WithLinkCount(5).WithStatID(id.JobID(uuid.New()))
	assert.Equal(t, 2, orig.LinkCount())
	got, _ := orig.StatID()
	assert.Equal(t, statID, got)

	mutated := cp.Changes()
	mutated[models.FieldPersonalName] = models.FieldChange{Field: models.FieldPersonalName, New: "x"}
	assert.True(t, orig.IsOnlyNaturalIDChange())
	assert.True(t, cp.IsOnlyNaturalIDChange())

	changes[models.FieldTopicalTerm] = models.FieldChange{Field: models.FieldTopicalTerm, New: "y"}
	assert.True(t, orig.IsOnlyNaturalIDChange(), "classification copies its input")
}

func TestWithOverridesLeaveOriginalUntouched(t *testing.T) {
	testutil.Given(t, "a classified natural id rename with one link", func(t *testing.T) {
		rec, err := Classify(updateEvent("n1", "n2"), models.Changes{
			models.FieldNaturalID: naturalIDChange("n1", "n2"),
		}, 1)
		require.NoError(t, err)

		testutil.When(t, "the link count is overridden", func(t *testing.T) {
			updated := rec.WithLinkCount(9)

			testutil.Then(t, "only the copy carries the new count", func(t *testing.T) {
				assert.Equal(t, 1, rec.LinkCount())
				assert.Equal(t, 9, updated.LinkCount())
			})
		})

		testutil.When(t, "a source record is attached", func(t *testing.T) {
			updated := rec.WithSourceRecord(&models.SourceRecord{AuthorityID: rec.AuthorityID()})

			testutil.Then(t, "the original stays without one", func(t *testing.T) {
				assert.Nil(t, rec.SourceRecord())
				assert.NotNil(t, updated.SourceRecord())
			})
		})
	})
}

func TestGroupByType(t *testing.T) {
	update, err := Classify(updateEvent("n1", "n2"), models.Changes{
		models.FieldNaturalID: naturalIDChange("n1", "n2"),
	}, 1)
	require.NoError(t, err)
	del, err := Classify(deleteEvent(models.SoftDelete), models.Changes{
		models.FieldNaturalID: naturalIDChange("n1", ""),
	}, 0)
	require.NoError(t, err)

	order, groups := GroupByType([]Record{del, update, del})
	assert.Equal(t, []Type{TypeUpdate, TypeDelete}, order)
	assert.Len(t, groups[TypeUpdate], 1)
	assert.Len(t, groups[TypeDelete], 2)
}
