package sink

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

func TestTimescaleStoreWriteMeasurements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewTimescaleStore(db, TimescaleTables{})
	ts := time.Date(2024, 3, 1, 10, 0, 4, 123000000, time.UTC)

	expectedQuery := regexp.QuoteMeta("INSERT INTO measurements (measurement, data_item_id, ts, value, value_num) VALUES " +
		"($1,$2,COALESCE($3, now()),$4,$5),($6,$7,COALESCE($8, now()),$9,$10) ON CONFLICT (data_item_id, ts) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs("PathFeedrate", "feed", ts, "12.5", 12.5, "Block", "blk", nil, "G01 X1", nil).
		WillReturnResult(sqlmock.NewResult(2, 2))

	res, err := store.WriteMeasurements(context.Background(), []domain.Measurement{
		{Measurement: "PathFeedrate", Timestamp: "2024-03-01T10:00:04.123Z", Tags: domain.Tags{DataItemID: "feed"}, Fields: domain.Fields{Value: "12.5"}},
		{Measurement: "Block", Tags: domain.Tags{DataItemID: "blk"}, Fields: domain.Fields{Value: "G01 X1"}},
	})
	if err != nil {
		t.Fatalf("write measurements: %v", err)
	}
	if res.Outcome != ports.WriteOK {
		t.Fatalf("expected ok outcome, got %s", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleStoreRejectsInvalidBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewTimescaleStore(db, TimescaleTables{})
	res, err := store.WriteMeasurements(context.Background(), []domain.Measurement{
		{Measurement: "Load", Tags: domain.Tags{DataItemID: "l1"}, Fields: domain.Fields{Value: "1"}},
		{Measurement: "", Tags: domain.Tags{DataItemID: "l2"}, Fields: domain.Fields{Value: "2"}},
	})
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if res.Outcome != ports.WriteInvalid {
		t.Fatalf("expected invalid outcome, got %s", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement should run for a rejected batch: %v", err)
	}
}

func TestTimescaleStoreStorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO equipment_dictionary").WillReturnError(errors.New("connection refused"))

	store := NewTimescaleStore(db, TimescaleTables{})
	res, err := store.WriteEquipment(context.Background(), []domain.Device{
		{DeviceID: "d", DeviceName: "dev", DeviceUUID: "D1", Manufacturer: "acme"},
	})
	if err == nil {
		t.Fatalf("expected error from failed insert")
	}
	if res.Outcome != ports.WriteStorageFailure {
		t.Fatalf("expected storage failure outcome, got %s", res)
	}
}

func TestTimescaleStoreWriteDataItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectedQuery := regexp.QuoteMeta("INSERT INTO dd (device_uuid, id, category, name, type) VALUES ($1,$2,$3,$4,$5)")
	mock.ExpectExec(expectedQuery).
		WithArgs("D1", "X1", "SAMPLE", "x", "POSITION").
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewTimescaleStore(db, TimescaleTables{DataItems: "dd"})
	res, err := store.WriteDataItems(context.Background(), []domain.DataItem{
		{Category: "SAMPLE", ID: "X1", DeviceUUID: "D1", Name: "x", Type: "POSITION"},
	})
	if err != nil || res.Outcome != ports.WriteOK {
		t.Fatalf("write data items: %v %s", err, res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleStoreEmptyBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewTimescaleStore(db, TimescaleTables{})
	if res, err := store.WriteMeasurements(context.Background(), nil); err != nil || res.Outcome != ports.WriteOK {
		t.Fatalf("expected ok for empty batch, got %s %v", res, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleStoreStatusAndVersion(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16.2"))

	store := NewTimescaleStore(db, TimescaleTables{})
	if err := store.Status(context.Background()); err != nil {
		t.Fatalf("status: %v", err)
	}
	v, err := store.Version(context.Background())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != "PostgreSQL 16.2" {
		t.Fatalf("expected version string, got %q", v)
	}
	if store.Name() != "timescaledb" {
		t.Fatalf("expected store name timescaledb, got %s", store.Name())
	}
}

func TestTimescaleStoreRejectsBadTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewTimescaleStore(db, TimescaleTables{})
	res, err := store.WriteMeasurements(context.Background(), []domain.Measurement{
		{Measurement: "Load", Timestamp: "yesterday", Tags: domain.Tags{DataItemID: "l1"}, Fields: domain.Fields{Value: "1"}},
	})
	if err != nil || res.Outcome != ports.WriteInvalid {
		t.Fatalf("expected invalid outcome without error, got %s %v", res, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement should run for a rejected batch: %v", err)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 0, 4, 123456000, time.UTC)
	for _, in := range []string{"2024-03-01T10:00:04.123456Z", "2024-03-01T10:00:04.123456"} {
		got, err := parseTimestamp(in)
		if err != nil {
			t.Fatalf("parseTimestamp(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parseTimestamp(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := parseTimestamp("yesterday"); err == nil || !strings.Contains(err.Error(), `"yesterday"`) {
		t.Fatalf("expected error naming the bad timestamp, got %v", err)
	}
}
