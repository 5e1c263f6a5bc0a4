package types

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrCoordinatesUnpaired = errors.New("latitude and longitude must be provided together")
	ErrLatitudeRange       = errors.New("latitude must be between -90 and 90")
	ErrLongitudeRange      = errors.New("longitude must be between -180 and 180")
)

// Coordinates is a WGS84 point attached to a request.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PairCoordinates accepts both halves or neither. A nil result means no location.
func PairCoordinates(lat, lng *float64) (*Coordinates, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, ErrCoordinatesUnpaired
	}
	c := Coordinates{Lat: *lat, Lng: *lng}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrLatitudeRange
	}
	if c.Lng < -180 || c.Lng > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// String renders "lat, lng" with six decimals.
func (c Coordinates) String() string {
	return fmt.Sprintf("%s, %s", strconv.FormatFloat(c.Lat, 'f', 6, 64), strconv.FormatFloat(c.Lng, 'f', 6, 64))
}
