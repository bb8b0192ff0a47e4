package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sqlmock.ExpectedPrepare) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertMeasurementSQL))
	store, err := New(context.Background(), db, 7, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, mock, prep
}

func TestInsertMeasurementPassesRawValues(t *testing.T) {
	store, mock, prep := newTestStore(t)
	defer store.Close()

	at := time.Date(2023, time.December, 25, 23, 59, 58, 0, time.UTC)
	prep.ExpectExec().
		WithArgs(at, int32(7), int32(123), int32(456)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.InsertMeasurement(context.Background(), at, 123, 456); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInsertMeasurementScalesInSQL(t *testing.T) {
	// The statement itself divides by ten; the store must not pre-scale.
	if matched, _ := regexp.MatchString(`\$3::decimal / 10`, insertMeasurementSQL); !matched {
		t.Fatal("temp scaling must happen at the storage boundary")
	}
	if matched, _ := regexp.MatchString(`\$4::decimal / 10`, insertMeasurementSQL); !matched {
		t.Fatal("humidity scaling must happen at the storage boundary")
	}
}

func TestInsertMeasurementPropagatesFailure(t *testing.T) {
	store, mock, prep := newTestStore(t)
	defer store.Close()

	at := time.Date(2023, time.December, 25, 23, 59, 58, 0, time.UTC)
	prep.ExpectExec().
		WithArgs(at, int32(7), int32(123), int32(456)).
		WillReturnError(context.DeadlineExceeded)

	if err := store.InsertMeasurement(context.Background(), at, 123, 456); err == nil {
		t.Fatal("expected insert failure to propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestKeepAliveStopsOnCancel(t *testing.T) {
	store, _, _ := newTestStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		store.KeepAlive(ctx, 50*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepalive did not stop on cancellation")
	}
}
