// Package ingest sequences one complete ingestion run: clock sync out,
// advisory count in, record stream into the sink, graceful shutdown.
package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/picowx/stationctl/internal/observability"
	"github.com/picowx/stationctl/internal/protocol"
	"github.com/picowx/stationctl/internal/protocol/session"
)

// Sink persists validated measurements. Any sink failure is fatal to the
// run; records are handed over synchronously and in arrival order.
type Sink interface {
	InsertMeasurement(ctx context.Context, at time.Time, temp, humidity int32) error
}

// Driver owns the station connection and the sink handle for the duration of
// one run. There is no retry, no skip-and-continue and no partial-batch
// recovery: the first error aborts everything.
type Driver struct {
	DeviceAddr string
	Zone       *time.Location
	Sink       Sink
	Logger     zerolog.Logger

	// Now supplies the clock-sync instant; nil means time.Now.
	Now func() time.Time
}

func (d *Driver) Run(ctx context.Context) error {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	sess, err := session.Dial(ctx, d.DeviceAddr, d.Zone)
	if err != nil {
		observability.RecordRunFailure("connect")
		return err
	}
	d.Logger.Info().Str("addr", d.DeviceAddr).Msg("connected to station")

	if err := sess.SendClock(now()); err != nil {
		_ = sess.Close()
		observability.RecordRunFailure("clock-sync")
		return err
	}

	count, err := sess.ReadCount()
	if err != nil {
		_ = sess.Close()
		observability.RecordRunFailure("count")
		return err
	}
	d.Logger.Info().Uint32("count", count).Msg("station advertised measurement count")

	received := 0
	err = sess.Stream(func(m protocol.Measurement) error {
		observability.RecordDecoded()
		if err := d.Sink.InsertMeasurement(ctx, m.Time, m.Temp, m.Humidity); err != nil {
			return err
		}
		observability.RecordStored()
		received++
		return nil
	})
	if err != nil {
		_ = sess.Close()
		observability.RecordRunFailure("stream")
		return err
	}

	if err := sess.Shutdown(); err != nil {
		observability.RecordRunFailure("shutdown")
		return err
	}

	d.Logger.Info().Int("received", received).Msg("ingestion run complete")
	return nil
}
