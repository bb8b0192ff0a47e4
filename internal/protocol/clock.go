package protocol

import "time"

// ClockPacketSize is the wire size of the packed clock-sync packet.
const ClockPacketSize = 6

// EncodeClock packs a local calendar instant into the station's 6-byte
// clock-sync layout. Bit 0 is the LSB of byte 0:
//
//	bits 0-5   second
//	bits 6-11  minute
//	bits 12-16 hour
//	bits 17-19 weekday, 0 = Sunday
//	bits 20-24 day of month, zero-based
//	bits 25-28 month, zero-based
//	bits 29+   year, truncated to the remaining width
//
// The station only consumes this packet to set its own clock, so there is
// no decode direction. Years outside the field's width lose their upper
// bits on the wire; the format is fixed and the firmware shares it.
func EncodeClock(t time.Time) [ClockPacketSize]byte {
	sec := uint8(t.Second())
	min := uint8(t.Minute())
	hour := uint8(t.Hour())
	wday := uint8(t.Weekday())
	day0 := uint8(t.Day() - 1)
	mon0 := uint8(int(t.Month()) - 1)
	year := uint16(t.Year())

	return [ClockPacketSize]byte{
		sec&0b111111 | min<<6,
		min>>2&0b1111 | hour<<4,
		hour>>4&0b1 | wday<<1 | day0<<4,
		day0>>4&0b1 | (mon0&0b1111)<<1 | uint8(year)<<5,
		uint8(year >> 3),
		uint8(year << 11),
	}
}
