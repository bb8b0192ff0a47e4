package protocol

import (
	"fmt"
	"time"
)

// MeasurementSize is the wire size of one packed measurement record.
const MeasurementSize = 8

// Measurement is one decoded station record. Temp and Humidity carry the raw
// tenths-of-unit integers from the wire; decimal scaling belongs to the
// storage boundary.
type Measurement struct {
	Time     time.Time
	Temp     int32
	Humidity int32
}

// DecodeMeasurement unpacks one 64-bit little-endian record. Bit offsets
// from the LSB:
//
//	bits 0-5   second
//	bits 6-11  minute
//	bits 12-16 hour
//	bits 17-21 day, zero-based
//	bits 22-25 month, zero-based
//	bits 26-41 year
//	bits 42-50 temp, raw tenths
//	bits 51-60 humidity, raw tenths
//
// The calendar date must be legal for its month and year, the time of day
// must be in range, and the combination must name exactly one instant in
// loc. DST folds and gaps are rejected rather than resolved.
func DecodeMeasurement(word uint64, loc *time.Location) (Measurement, error) {
	year := int(word >> 26 & 0xffff)
	month := int(word>>22&0b1111) + 1
	day := int(word>>17&0b11111) + 1
	hour := int(word >> 12 & 0b11111)
	min := int(word >> 6 & 0b111111)
	sec := int(word & 0b111111)

	if month > 12 || day > daysIn(year, time.Month(month)) {
		return Measurement{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	if hour > 23 || min > 59 || sec > 59 {
		return Measurement{}, fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalidTime, hour, min, sec)
	}

	at, err := resolveLocal(year, time.Month(month), day, hour, min, sec, loc)
	if err != nil {
		return Measurement{}, err
	}

	return Measurement{
		Time:     at,
		Temp:     int32(word >> 42 & 0b111111111),
		Humidity: int32(word >> 51 & 0b1111111111),
	}, nil
}

// daysIn relies on time.Date normalizing day zero of the next month to the
// last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// resolveLocal maps a wall-clock reading onto exactly one instant in loc. It
// collects the candidate zone offsets around the wall time and counts the
// interpretations that reproduce it: zero matches means the reading fell in
// a DST gap, two means it fell in a DST fold.
func resolveLocal(year int, month time.Month, day, hour, min, sec int, loc *time.Location) (time.Time, error) {
	wall := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	probe := time.Date(year, month, day, hour, min, sec, 0, loc)

	var matches []time.Time
	seen := make(map[int]bool)
	for _, ref := range []time.Time{probe.Add(-26 * time.Hour), probe, probe.Add(26 * time.Hour)} {
		_, offset := ref.Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true
		instant := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if _, got := instant.Zone(); got == offset {
			matches = append(matches, instant)
		}
	}

	switch len(matches) {
	case 0:
		return time.Time{}, fmt.Errorf("%w: %s", ErrImpossibleTime, wall.Format("2006-01-02 15:04:05"))
	case 1:
		return matches[0], nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrAmbiguousTime, wall.Format("2006-01-02 15:04:05"))
	}
}
