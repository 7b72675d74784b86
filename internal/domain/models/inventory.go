package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is one of the three physical sites stock is tracked at.
type Location string

const (
	LocationWiley   Location = "Wiley"
	LocationRedding Location = "Redding"
	LocationJane    Location = "Jane"
)

// Locations lists every valid site.
var Locations = []Location{LocationWiley, LocationRedding, LocationJane}

// ParseLocation resolves a case-insensitive location name.
func ParseLocation(s string) (Location, error) {
	for _, loc := range Locations {
		if strings.EqualFold(s, string(loc)) {
			return loc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLocation, s)
}

// InventoryItem represents a stocked supply item at one location. The same
// item name may exist independently at each location.
type InventoryItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Item     string             `bson:"item" json:"item"`
	Location Location           `bson:"location" json:"location"`
	Quantity int                `bson:"quantity" json:"quantity"`
	EOS      bool               `bson:"eos" json:"eos"`
	Note     string             `bson:"note,omitempty" json:"note,omitempty"`
	Updated  time.Time          `bson:"updated" json:"updated"`
}
