package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/picowx/stationctl/internal/protocol"
)

// Station flash geometry. The advertised record count can never exceed what
// the flash holds.
const (
	sectorCount         = 512
	pagesPerSector      = 16
	measurementsPerPage = 32

	// MaxRecordCount is the theoretical capacity of the station's flash.
	MaxRecordCount = sectorCount * pagesPerSector * measurementsPerPage
)

var ErrCountExceedsMax = errors.New("session: station reported more than the theoretical maximum measurement count")

// Session drives one exchange with the station: clock sync out, advisory
// count in, packed records in until the station closes the stream. The
// session exclusively owns the connection until Shutdown or Close.
type Session struct {
	conn net.Conn
	loc  *time.Location
}

// Dial connects to the station and wraps the connection. Decoded record
// timestamps are resolved in loc.
func Dial(ctx context.Context, addr string, loc *time.Location) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: connect to station: %w", err)
	}
	return New(conn, loc), nil
}

// New wraps an established connection. A nil loc means the process-local
// zone.
func New(conn net.Conn, loc *time.Location) *Session {
	if loc == nil {
		loc = time.Local
	}
	return &Session{conn: conn, loc: loc}
}

// SendClock writes the packed clock packet for now, expressed in the
// session's zone.
func (s *Session) SendClock(now time.Time) error {
	packet := protocol.EncodeClock(now.In(s.loc))
	if _, err := s.conn.Write(packet[:]); err != nil {
		return fmt.Errorf("session: write clock packet: %w", err)
	}
	return nil
}

// ReadCount reads the advisory record count and enforces the flash capacity
// bound. The count does not terminate the record loop; Stream stops on peer
// EOF regardless of the value returned here. EOF before four bytes arrive is
// an error.
func (s *Session) ReadCount() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(s.conn, buf[:]); err != nil {
		return 0, fmt.Errorf("session: read measurement count: %w", err)
	}
	count := binary.LittleEndian.Uint32(buf[:])
	if count > MaxRecordCount {
		return count, ErrCountExceedsMax
	}
	return count, nil
}

// Stream reads packed records until the station closes the stream, decoding
// each one and handing it to fn in arrival order. A clean EOF on a record
// boundary terminates the loop; a partial record is an error. An error from
// fn aborts the stream.
func (s *Session) Stream(fn func(protocol.Measurement) error) error {
	var buf [protocol.MeasurementSize]byte
	for {
		if _, err := io.ReadFull(s.conn, buf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("session: read packed measurement: %w", err)
		}
		m, err := protocol.DecodeMeasurement(binary.LittleEndian.Uint64(buf[:]), s.loc)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
}

// Shutdown half-closes the write side to signal the station, then releases
// the connection. It runs even though the record loop already saw EOF; the
// peer expects the clean close.
func (s *Session) Shutdown() error {
	type writeCloser interface{ CloseWrite() error }
	if cw, ok := s.conn.(writeCloser); ok {
		if err := cw.CloseWrite(); err != nil {
			_ = s.conn.Close()
			return fmt.Errorf("session: shut connection down: %w", err)
		}
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("session: close connection: %w", err)
	}
	return nil
}

// Close releases the connection without the half-close handshake. Used on
// error paths where the exchange is already broken.
func (s *Session) Close() error {
	return s.conn.Close()
}
