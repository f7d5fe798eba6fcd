package models

import (
	"fmt"
	"strings"
)

// Field is a trackable authority attribute. The set is closed: one entry per
// controlled heading category plus the synthetic natural id.
type Field int

const (
	FieldPersonalName Field = iota
	FieldPersonalNameTitle
	FieldCorporateName
	FieldCorporateNameTitle
	FieldMeetingName
	FieldMeetingNameTitle
	FieldUniformTitle
	FieldNamedEvent
	FieldTopicalTerm
	FieldGeographicName
	FieldGenreTerm
	FieldChronTerm
	FieldMediumPerfTerm
	FieldGeneralSubdivision
	FieldGeographicSubdivision
	FieldChronSubdivision
	FieldFormSubdivision
	FieldNaturalID

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldPersonalName:          "personalName",
	FieldPersonalNameTitle:     "personalNameTitle",
	FieldCorporateName:         "corporateName",
	FieldCorporateNameTitle:    "corporateNameTitle",
	FieldMeetingName:           "meetingName",
	FieldMeetingNameTitle:      "meetingNameTitle",
	FieldUniformTitle:          "uniformTitle",
	FieldNamedEvent:            "namedEvent",
	FieldTopicalTerm:           "topicalTerm",
	FieldGeographicName:        "geographicName",
	FieldGenreTerm:             "genreTerm",
	FieldChronTerm:             "chronTerm",
	FieldMediumPerfTerm:        "mediumPerfTerm",
	FieldGeneralSubdivision:    "generalSubdivision",
	FieldGeographicSubdivision: "geographicSubdivision",
	FieldChronSubdivision:      "chronSubdivision",
	FieldFormSubdivision:       "formSubdivision",
	FieldNaturalID:             "naturalId",
}

var fieldsByLowerName = func() map[string]Field {
	m := make(map[string]Field, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		m[strings.ToLower(fieldNames[f])] = f
	}
	return m
}()

// Fields returns every trackable field in enumeration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// HeadingFields returns the heading categories, excluding the natural id.
func HeadingFields() []Field {
	return Fields()[:FieldNaturalID]
}

// FieldByName resolves an upstream attribute name, ignoring case.
func FieldByName(name string) (Field, bool) {
	f, ok := fieldsByLowerName[strings.ToLower(name)]
	return f, ok
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func (f Field) IsNaturalID() bool { return f == FieldNaturalID }

func (f Field) MarshalText() ([]byte, error) {
	if f < 0 || f >= fieldCount {
		return nil, fmt.Errorf("unknown authority field %d", int(f))
	}
	return []byte(fieldNames[f]), nil
}

func (f *Field) UnmarshalText(b []byte) error {
	v, ok := FieldByName(string(b))
	if !ok {
		return fmt.Errorf("unknown authority field %q", string(b))
	}
	*f = v
	return nil
}
