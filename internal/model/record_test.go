package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestParseInteraction tests parsing of the interaction CSV field.
func TestParseInteraction(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Interaction
		wantErr  error
	}{
		{"call", "call", InteractionCall, nil},
		{"text", "text", InteractionText, nil},
		{"uppercase", "CALL", InteractionCall, nil},
		{"whitespace", " text ", InteractionText, nil},
		{"empty", "", 0, ErrUnknownInteraction},
		{"unknown", "fax", 0, ErrUnknownInteraction},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseInteraction(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestParseDirection tests parsing of the direction CSV field.
func TestParseDirection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Direction
		wantErr  error
	}{
		{"in", "in", DirectionIn, nil},
		{"out", "out", DirectionOut, nil},
		{"uppercase", "OUT", DirectionOut, nil},
		{"empty", "", 0, ErrUnknownDirection},
		{"unknown", "sideways", 0, ErrUnknownDirection},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDirection(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestInteractionString tests the wire form round-trip.
func TestInteractionString(t *testing.T) {
	t.Parallel()

	if InteractionCall.String() != "call" {
		t.Errorf("got %q, expected %q", InteractionCall.String(), "call")
	}
	if InteractionText.String() != "text" {
		t.Errorf("got %q, expected %q", InteractionText.String(), "text")
	}
	if Interaction(42).String() != "unknown" {
		t.Errorf("got %q, expected %q", Interaction(42).String(), "unknown")
	}
}

// TestPositionKey tests the grouping key.
func TestPositionKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		position Position
		expected string
	}{
		{
			name:     "antenna id wins",
			position: Position{AntennaID: "A01", Latitude: 42.3, Longitude: -71.1, HasCoordinates: true},
			expected: "A01",
		},
		{
			name:     "coordinates rounded",
			position: Position{Latitude: 42.36678, Longitude: -71.09213, HasCoordinates: true},
			expected: "42.367,-71.092",
		},
		{
			name:     "unknown",
			position: Position{},
			expected: "",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.position.Key(); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestPositionDistanceKm tests the great-circle distance.
func TestPositionDistanceKm(t *testing.T) {
	t.Parallel()

	t.Run("known city pair", func(t *testing.T) {
		t.Parallel()

		// Boston to New York is roughly 306 km.
		boston := Position{Latitude: 42.3601, Longitude: -71.0589, HasCoordinates: true}
		newYork := Position{Latitude: 40.7128, Longitude: -74.0060, HasCoordinates: true}

		d := boston.DistanceKm(newYork)
		if math.Abs(d-306) > 5 {
			t.Errorf("got %.1f km, expected about 306 km", d)
		}
	})

	t.Run("same point is zero", func(t *testing.T) {
		t.Parallel()

		p := Position{Latitude: 10, Longitude: 20, HasCoordinates: true}
		if d := p.DistanceKm(p); d != 0 {
			t.Errorf("got %f, expected 0", d)
		}
	})

	t.Run("unknown coordinates return -1", func(t *testing.T) {
		t.Parallel()

		p := Position{AntennaID: "A01"}
		q := Position{Latitude: 10, Longitude: 20, HasCoordinates: true}
		if d := p.DistanceKm(q); d != -1 {
			t.Errorf("got %f, expected -1", d)
		}
	})
}

// TestRecordEqual tests duplicate detection.
func TestRecordEqual(t *testing.T) {
	t.Parallel()

	base := Record{
		Interaction:     InteractionCall,
		Direction:       DirectionOut,
		CorrespondentID: "B02",
		Datetime:        time.Date(2014, 3, 2, 7, 13, 30, 0, time.UTC),
		CallDuration:    137,
		Position:        Position{AntennaID: "A01"},
	}

	same := base
	if !base.Equal(same) {
		t.Error("expected identical records to be equal")
	}

	other := base
	other.CallDuration = 138
	if base.Equal(other) {
		t.Error("expected records with different durations to differ")
	}

	shifted := base
	shifted.Datetime = base.Datetime.Add(time.Second)
	if base.Equal(shifted) {
		t.Error("expected records with different timestamps to differ")
	}
}
