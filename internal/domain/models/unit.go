package models

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnitType distinguishes the two tracked host variants.
type UnitType string

const (
	UnitTypeEmployee UnitType = "employee"
	UnitTypeMachine  UnitType = "machine"
)

// Valid reports whether the unit type is one of the known variants.
func (t UnitType) Valid() bool {
	return t == UnitTypeEmployee || t == UnitTypeMachine
}

// Unit represents a tracked network host: an employee workstation or a
// shared machine. Variant-specific attributes live in the open Fields map,
// driven by the configured field schemas.
type Unit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name           string             `bson:"name" json:"name"`
	IP             string             `bson:"ip" json:"ip"`
	Type           UnitType           `bson:"type" json:"type"`
	SharedComputer bool               `bson:"sharedComputer" json:"sharedComputer"`
	PrimaryUser    string             `bson:"primaryUser,omitempty" json:"primaryUser,omitempty"`
	Fields         map[string]string  `bson:"fields,omitempty" json:"fields,omitempty"`
}

// forbiddenNameChars would break URL routing or query encoding if allowed
// into a unit name.
const forbiddenNameChars = `/?&=#:%+'"\;<>`

// CleanName strips trailing whitespace from a unit name. Leading whitespace
// is preserved on purpose; only trailing blanks are a known data-entry slip.
func CleanName(name string) string {
	return strings.TrimRight(name, " \t\r\n")
}

// ValidateName rejects empty names and names containing reserved characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if i := strings.IndexAny(name, forbiddenNameChars); i >= 0 {
		return fmt.Errorf("%w: name must not contain %q", ErrInvalidName, name[i])
	}
	return nil
}

// ParseIPv4 parses a strict dotted-quad address into its four octets.
// Exactly four decimal groups, each 0-255; anything else is rejected.
func ParseIPv4(ip string) ([4]int, error) {
	var octets [4]int

	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return octets, fmt.Errorf("%w: %q", ErrInvalidIPFormat, ip)
	}
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return octets, fmt.Errorf("%w: %q", ErrInvalidIPFormat, ip)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return octets, fmt.Errorf("%w: %q", ErrInvalidIPFormat, ip)
		}
		octets[i] = n
	}
	return octets, nil
}

// IPToInt packs a dotted-quad address into an unsigned 32-bit integer,
// most-significant octet first, so that sorting by the result reproduces
// standard ascending IP order.
func IPToInt(ip string) (uint32, error) {
	octets, err := ParseIPv4(ip)
	if err != nil {
		return 0, err
	}
	return uint32(octets[0])<<24 | uint32(octets[1])<<16 | uint32(octets[2])<<8 | uint32(octets[3]), nil
}
