// Package devicetest provides a scripted in-memory station peer for session
// and driver tests.
package devicetest

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
)

// Script is the device side of one exchange.
type Script struct {
	// Count is the advisory measurement count to advertise.
	Count uint32
	// Records are the packed 64-bit measurements sent before closing.
	Records []uint64
	// Trailing is written raw after Records, for truncated-record cases.
	Trailing []byte
	// SkipCount makes the device hang up before advertising a count.
	SkipCount bool
}

// PackMeasurement assembles a packed record from raw field values. Month and
// day are zero-based, matching the wire.
func PackMeasurement(year, month0, day0, hour, min, sec, temp, humidity uint64) uint64 {
	return sec | min<<6 | hour<<12 | day0<<17 | month0<<22 | year<<26 | temp<<42 | humidity<<51
}

// Pipe starts the scripted device on an in-memory connection and returns the
// client end. The device consumes the clock packet, replies per the script
// and closes its end.
func Pipe(t *testing.T, script Script) net.Conn {
	t.Helper()
	client, device := net.Pipe()
	go run(device, script)
	return client
}

// Serve runs the script behind a one-shot loopback TCP listener and returns
// its address.
func Serve(t *testing.T, script Script) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		run(conn, script)
	}()
	return ln.Addr().String()
}

func run(conn net.Conn, script Script) {
	defer conn.Close()

	clock := make([]byte, 6)
	if _, err := io.ReadFull(conn, clock); err != nil {
		return
	}
	if script.SkipCount {
		return
	}
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], script.Count)
	if _, err := conn.Write(count[:]); err != nil {
		return
	}
	for _, rec := range script.Records {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], rec)
		if _, err := conn.Write(buf[:]); err != nil {
			return
		}
	}
	if len(script.Trailing) > 0 {
		_, _ = conn.Write(script.Trailing)
	}
}
