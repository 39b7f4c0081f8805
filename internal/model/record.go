package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Record parsing errors.
var (
	// ErrUnknownInteraction is returned when the interaction type is neither call nor text.
	ErrUnknownInteraction = errors.New("unknown interaction type")
	// ErrUnknownDirection is returned when the direction is neither in nor out.
	ErrUnknownDirection = errors.New("unknown direction")
)

// DatetimeLayout is the timestamp layout used in record CSV files.
// Example: 2014-03-02 07:13:30
const DatetimeLayout = "2006-01-02 15:04:05"

// Interaction represents the type of a communication event.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and filtering. The String() method provides
// the CSV wire form when needed.
type Interaction int

const (
	// InteractionCall is a voice call.
	InteractionCall Interaction = iota

	// InteractionText is a text message (SMS).
	InteractionText
)

// String returns the CSV wire form of the interaction type.
func (i Interaction) String() string {
	switch i {
	case InteractionCall:
		return "call"
	case InteractionText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseInteraction converts a CSV field into an Interaction.
// Matching is case-insensitive and surrounding whitespace is ignored.
func ParseInteraction(s string) (Interaction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return InteractionCall, nil
	case "text":
		return InteractionText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownInteraction, s)
	}
}

// Direction represents which party initiated a communication event,
// from the point of view of the user whose file the record came from.
type Direction int

const (
	// DirectionIn is a received call or text.
	DirectionIn Direction = iota

	// DirectionOut is an initiated call or text.
	DirectionOut
)

// String returns the CSV wire form of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return "unknown"
	}
}

// ParseDirection converts a CSV field into a Direction.
// Matching is case-insensitive and surrounding whitespace is ignored.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in":
		return DirectionIn, nil
	case "out":
		return DirectionOut, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Position is where a record was observed. Carrier exports identify the
// cell tower by antenna ID; coordinates are attached when an antennas
// file maps the ID, or when the export carries raw GPS columns.
type Position struct {
	// AntennaID is the cell tower identifier, empty when unknown.
	AntennaID string `json:"antenna_id,omitempty"`

	// Latitude in decimal degrees. Only meaningful when HasCoordinates is true.
	Latitude float64 `json:"latitude,omitempty"`

	// Longitude in decimal degrees. Only meaningful when HasCoordinates is true.
	Longitude float64 `json:"longitude,omitempty"`

	// HasCoordinates reports whether Latitude/Longitude carry real values.
	// A flag is used instead of pointer fields because (0, 0) is a valid
	// coordinate pair.
	HasCoordinates bool `json:"has_coordinates,omitempty"`
}

// Known reports whether the position carries any location information.
func (p Position) Known() bool {
	return p.AntennaID != "" || p.HasCoordinates
}

// Key returns a stable grouping key for the position: the antenna ID when
// present, otherwise the coordinates rounded to ~100m precision.
// An empty string means the position is unknown.
func (p Position) Key() string {
	if p.AntennaID != "" {
		return p.AntennaID
	}
	if p.HasCoordinates {
		return fmt.Sprintf("%.3f,%.3f", p.Latitude, p.Longitude)
	}
	return ""
}

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// positions using the haversine formula. It returns -1 when either position
// has no coordinates.
func (p Position) DistanceKm(other Position) float64 {
	if !p.HasCoordinates || !other.HasCoordinates {
		return -1
	}

	lat1 := p.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - p.Latitude) * math.Pi / 180
	dLon := (other.Longitude - p.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Record is a single call detail record: one call or text observed on a
// subject's line.
type Record struct {
	// Interaction is the event type (call or text).
	Interaction Interaction `json:"interaction"`

	// Direction is in for received events, out for initiated events.
	Direction Direction `json:"direction"`

	// CorrespondentID identifies the party on the other end.
	CorrespondentID string `json:"correspondent_id"`

	// Datetime is when the event started.
	Datetime time.Time `json:"datetime"`

	// CallDuration is the call length in seconds. Texts carry no duration
	// and always have 0 here.
	CallDuration int `json:"call_duration,omitempty"`

	// Position is where the event was observed, if the export includes
	// location columns.
	Position Position `json:"position"`
}

// Equal reports whether two records describe the same event.
// Used for duplicate detection during ingest.
func (r Record) Equal(other Record) bool {
	return r.Interaction == other.Interaction &&
		r.Direction == other.Direction &&
		r.CorrespondentID == other.CorrespondentID &&
		r.Datetime.Equal(other.Datetime) &&
		r.CallDuration == other.CallDuration &&
		r.Position.Key() == other.Position.Key()
}
