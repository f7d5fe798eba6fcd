package models

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"

	id "authlinks/pkg/domain"
)

// Upstream attribute names that are not headings.
const (
	attrID           = "id"
	attrNaturalID    = "naturalId"
	attrSourceFileID = "sourceFileId"
	attrMetadata     = "metadata"
)

// Metadata is the upstream audit block of a snapshot.
type Metadata struct {
	UpdatedByUserID *id.UserID `json:"updatedByUserId,omitempty"`
	UpdatedDate     string     `json:"updatedDate,omitempty"`
}

// Snapshot is an authority's state at one point in time. Headings holds the
// controlled heading values; one category is populated per authority. Other
// keeps every attribute this engine does not interpret so a diff can see and
// ignore it.
type Snapshot struct {
	ID           id.AuthorityID
	NaturalID    string
	SourceFileID *uuid.UUID
	Headings     map[Field]string
	Other        map[string]any
	Metadata     *Metadata
}

// Heading returns the value of a heading field and whether it is set.
func (s *Snapshot) Heading(f Field) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Headings[f]
	return v, ok
}

// Values returns the flattened attribute view compared by the diff: heading
// names, the natural id, the source file and every uninterpreted attribute.
// Identity and audit metadata are excluded because they differ on every event.
func (s *Snapshot) Values() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(s.Headings)+len(s.Other)+2)
	maps.Copy(out, s.Other)
	for f, v := range s.Headings {
		out[f.String()] = v
	}
	if s.NaturalID != "" {
		out[attrNaturalID] = s.NaturalID
	}
	if s.SourceFileID != nil {
		out[attrSourceFileID] = s.SourceFileID.String()
	}
	return out
}

// UpdatedBy returns the user recorded in the snapshot metadata.
func (s *Snapshot) UpdatedBy() (id.UserID, bool) {
	if s == nil || s.Metadata == nil || s.Metadata.UpdatedByUserID == nil {
		return id.UserID{}, false
	}
	return *s.Metadata.UpdatedByUserID, true
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Snapshot{}
	for key, value := range raw {
		switch key {
		case attrID:
			if err := json.Unmarshal(value, &s.ID); err != nil {
				return fmt.Errorf("authority id: %w", err)
			}
			continue
		case attrSourceFileID:
			if string(value) == "null" {
				continue
			}
			var sf uuid.UUID
			if err := json.Unmarshal(value, &sf); err != nil {
				return fmt.Errorf("source file id: %w", err)
			}
			s.SourceFileID = &sf
			continue
		case attrMetadata:
			if err := json.Unmarshal(value, &s.Metadata); err != nil {
				return fmt.Errorf("metadata: %w", err)
			}
			continue
		}

		if f, ok := FieldByName(key); ok {
			var str *string
			if err := json.Unmarshal(value, &str); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if str == nil {
				continue
			}
			if f.IsNaturalID() {
				s.NaturalID = *str
				continue
			}
			if s.Headings == nil {
				s.Headings = make(map[Field]string)
			}
			s.Headings[f] = *str
			continue
		}

		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if s.Other == nil {
			s.Other = make(map[string]any)
		}
		s.Other[key] = v
	}
	return nil
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Headings)+len(s.Other)+4)
	maps.Copy(out, s.Other)
	for f, v := range s.Headings {
		out[f.String()] = v
	}
	if !s.ID.IsNil() {
		out[attrID] = s.ID
	}
	if s.NaturalID != "" {
		out[attrNaturalID] = s.NaturalID
	}
	if s.SourceFileID != nil {
		out[attrSourceFileID] = s.SourceFileID
	}
	if s.Metadata != nil {
		out[attrMetadata] = s.Metadata
	}
	return json.Marshal(out)
}
