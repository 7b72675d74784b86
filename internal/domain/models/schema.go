package models

import (
	"fmt"
	"net"
	"strconv"
)

// FieldKind selects the validation applied to a dynamic field value.
type FieldKind string

const (
	FieldKindText   FieldKind = "text"
	FieldKindNumber FieldKind = "number"
	FieldKindMAC    FieldKind = "mac"
)

// FieldSpec describes one variant-specific unit attribute. The employee and
// machine field lists are supplied as JSON config and rendered/validated
// generically; they are never compiled into fixed structs.
type FieldSpec struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
}

// ValidateFields checks the values of schema-known keys. Keys without a spec
// pass through untouched: the dynamic form layer treats the field map as
// open-ended. Empty values are always accepted.
func ValidateFields(specs []FieldSpec, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	for _, spec := range specs {
		value, ok := fields[spec.Key]
		if !ok || value == "" {
			continue
		}
		switch spec.Kind {
		case FieldKindNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return fmt.Errorf("%w: %s must be numeric, got %q", ErrInvalidField, spec.Key, value)
			}
		case FieldKindMAC:
			if _, err := net.ParseMAC(value); err != nil {
				return fmt.Errorf("%w: %s must be a MAC address, got %q", ErrInvalidField, spec.Key, value)
			}
		}
	}
	return nil
}
