package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "authlinks/pkg/domain"
)

func TestFieldByName(t *testing.T) {
	t.Run("every field resolves from its own name", func(t *testing.T) {
		for _, f := range Fields() {
			got, ok := FieldByName(f.String())
			require.True(t, ok, f.String())
			assert.Equal(t, f, got)
		}
	})

	t.Run("lookup ignores case", func(t *testing.T) {
		got, ok := FieldByName("NATURALID")
		require.True(t, ok)
		assert.Equal(t, FieldNaturalID, got)

		got, ok = FieldByName("TopicalTerm")
		require.True(t, ok)
		assert.Equal(t, FieldTopicalTerm, got)
	})

	t.Run("unknown names are reported", func(t *testing.T) {
		_, ok := FieldByName("sftPersonalName")
		assert.False(t, ok)
	})

	t.Run("the set has eighteen entries with natural id last", func(t *testing.T) {
		assert.Len(t, Fields(), 18)
		assert.Len(t, HeadingFields(), 17)
		assert.NotContains(t, HeadingFields(), FieldNaturalID)
	})
}

func TestSnapshotJSON(t *testing.T) {
	authorityID := uuid.New()
	userID := uuid.New()
	sourceFile := uuid.New()
	raw := `{
		"id": "` + authorityID.String() + `",
		"naturalId": "n2001",
		"sourceFileId": "` + sourceFile.String() + `",
		"personalName": "Smith, J.",
		"sftPersonalName": ["Smith, John"],
		"subjectHeadings": "a",
		"metadata": {"updatedByUserId": "` + userID.String() + `", "updatedDate": "2024-01-01T10:00:00.000+00:00"},
		"_version": 3
	}`

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, id.AuthorityID(authorityID), s.ID)
	assert.Equal(t, "n2001", s.NaturalID)
	require.NotNil(t, s.SourceFileID)
	assert.Equal(t, sourceFile, *s.SourceFileID)
	assert.Equal(t, map[Field]string{FieldPersonalName: "Smith, J."}, s.Headings)
	assert.Contains(t, s.Other, "sftPersonalName")
	assert.Contains(t, s.Other, "_version")

	user, ok := s.UpdatedBy()
	require.True(t, ok)
	assert.Equal(t, id.UserID(userID), user)

	values := s.Values()
	assert.Equal(t, "Smith, J.", values["personalName"])
	assert.Equal(t, "n2001", values["naturalId"])
	assert.NotContains(t, values, "id")
	assert.NotContains(t, values, "metadata")

	t.Run("marshal keeps upstream attribute names", func(t *testing.T) {
		out, err := json.Marshal(s)
		require.NoError(t, err)

		var back Snapshot
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, s.Headings, back.Headings)
		assert.Equal(t, s.NaturalID, back.NaturalID)
		assert.Equal(t, s.ID, back.ID)
	})

	t.Run("null headings are absent", func(t *testing.T) {
		var n Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{"corporateName": null, "naturalId": "x"}`), &n))
		_, ok := n.Heading(FieldCorporateName)
		assert.False(t, ok)
	})
}

func TestNilSnapshot(t *testing.T) {
	var s *Snapshot
	assert.Empty(t, s.Values())
	_, ok := s.UpdatedBy()
	assert.False(t, ok)
	_, ok = s.Heading(FieldPersonalName)
	assert.False(t, ok)
}

func TestChangesClone(t *testing.T) {
	orig := Changes{FieldNaturalID: {Field: FieldNaturalID, Old: "n1", New: "n2"}}
	clone := orig.Clone()
	clone[FieldPersonalName] = FieldChange{Field: FieldPersonalName, New: "x"}

	assert.Len(t, orig, 1)
	assert.Len(t, clone, 2)
}
