package model

import (
	"fmt"
	"strings"
)

// EntityField names one of the fixed entity attributes a PDF field can be mapped to.
type EntityField string

const (
	FieldName          EntityField = "name"
	FieldStreetAddress EntityField = "street_address"
	FieldCity          EntityField = "city"
	FieldState         EntityField = "state"
	FieldZipCode       EntityField = "zip_code"
)

// EntityFields lists the attributes in auto-map priority order.
var EntityFields = []EntityField{
	FieldName,
	FieldStreetAddress,
	FieldCity,
	FieldState,
	FieldZipCode,
}

// Valid reports whether f is one of the recognized entity attributes.
func (f EntityField) Valid() bool {
	switch f {
	case FieldName, FieldStreetAddress, FieldCity, FieldState, FieldZipCode:
		return true
	default:
		return false
	}
}

// ParseEntityField converts s into an EntityField, rejecting unknown keys.
func ParseEntityField(s string) (EntityField, error) {
	f := EntityField(s)
	if !f.Valid() {
		return "", fmt.Errorf("unrecognized entity field %q (expected one of %s)", s, entityFieldList())
	}
	return f, nil
}

func entityFieldList() string {
	names := make([]string, len(EntityFields))
	for i, f := range EntityFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (f EntityField) String() string {
	return string(f)
}
