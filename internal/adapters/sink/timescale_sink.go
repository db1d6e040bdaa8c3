package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// TimescaleTables names the tables written by TimescaleStore.
type TimescaleTables struct {
	Equipment    string `yaml:"equipment"`
	DataItems    string `yaml:"data_items"`
	Measurements string `yaml:"measurements"`
}

func (t *TimescaleTables) ApplyDefaults() {
	if t.Equipment == "" {
		t.Equipment = "equipment_dictionary"
	}
	if t.DataItems == "" {
		t.DataItems = "data_dictionary"
	}
	if t.Measurements == "" {
		t.Measurements = "measurements"
	}
}

// TimescaleStore writes dictionaries and measurements straight into
// PostgreSQL/TimescaleDB. Batches that fail validation are rejected whole,
// matching the storage service's 402 behavior.
type TimescaleStore struct {
	db     *sql.DB
	tables TimescaleTables
}

func NewTimescaleStore(db *sql.DB, tables TimescaleTables) *TimescaleStore {
	tables.ApplyDefaults()
	return &TimescaleStore{db: db, tables: tables}
}

func (t *TimescaleStore) Name() string { return "timescaledb" }

func (t *TimescaleStore) Status(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

func (t *TimescaleStore) Version(ctx context.Context) (string, error) {
	var v string
	if err := t.db.QueryRowContext(ctx, "SELECT version()").Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

func (t *TimescaleStore) WriteEquipment(ctx context.Context, devices []domain.Device) (ports.WriteResult, error) {
	rows := make([][]any, 0, len(devices))
	for _, d := range devices {
		if d.DeviceUUID == "" || d.DeviceID == "" || d.DeviceName == "" {
			return t.reject()
		}
		rows = append(rows, []any{d.DeviceUUID, d.DeviceID, d.DeviceName, d.Manufacturer, d.Model, d.Description})
	}
	return t.exec(ctx, t.tables.Equipment,
		[]string{"device_uuid", "device_id", "device_name", "manufacturer", "model", "description"},
		rows,
		" ON CONFLICT (device_uuid) DO UPDATE SET device_id = EXCLUDED.device_id, device_name = EXCLUDED.device_name,"+
			" manufacturer = EXCLUDED.manufacturer, model = EXCLUDED.model, description = EXCLUDED.description")
}

func (t *TimescaleStore) WriteDataItems(ctx context.Context, items []domain.DataItem) (ports.WriteResult, error) {
	rows := make([][]any, 0, len(items))
	for _, di := range items {
		if di.ID == "" || di.DeviceUUID == "" || di.Category == "" {
			return t.reject()
		}
		rows = append(rows, []any{di.DeviceUUID, di.ID, di.Category, di.Name, di.Type})
	}
	return t.exec(ctx, t.tables.DataItems,
		[]string{"device_uuid", "id", "category", "name", "type"},
		rows,
		" ON CONFLICT (device_uuid, id) DO UPDATE SET category = EXCLUDED.category, name = EXCLUDED.name, type = EXCLUDED.type")
}

func (t *TimescaleStore) WriteMeasurements(ctx context.Context, records []domain.Measurement) (ports.WriteResult, error) {
	rows := make([][]any, 0, len(records))
	for _, m := range records {
		if m.Measurement == "" || m.Tags.DataItemID == "" {
			return t.reject()
		}
		var ts any
		if m.Timestamp != "" {
			parsed, err := parseTimestamp(m.Timestamp)
			if err != nil {
				return t.reject()
			}
			ts = parsed
		}
		var num any
		if f, err := strconv.ParseFloat(m.Fields.Value, 64); err == nil {
			num = f
		}
		rows = append(rows, []any{m.Measurement, m.Tags.DataItemID, ts, m.Fields.Value, num})
	}
	return t.exec(ctx, t.tables.Measurements,
		[]string{"measurement", "data_item_id", "ts", "value", "value_num"},
		rows,
		" ON CONFLICT (data_item_id, ts) DO NOTHING")
}

func (t *TimescaleStore) reject() (ports.WriteResult, error) {
	return ports.WriteResult{Outcome: ports.WriteInvalid}, nil
}

func (t *TimescaleStore) exec(ctx context.Context, table string, columns []string, rows [][]any, suffix string) (ports.WriteResult, error) {
	if len(rows) == 0 {
		return ports.WriteResult{Outcome: ports.WriteOK}, nil
	}
	query, args := insertStatement(table, columns, rows, suffix)
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return ports.WriteResult{Outcome: ports.WriteStorageFailure}, fmt.Errorf("insert into %s: %w", table, err)
	}
	return ports.WriteResult{Outcome: ports.WriteOK}, nil
}

// insertStatement builds a multi-row INSERT with positional placeholders.
// Missing timestamps fall back to the database clock.
func insertStatement(table string, columns []string, rows [][]any, suffix string) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j, col := range columns {
			if j > 0 {
				b.WriteString(",")
			}
			args = append(args, row[j])
			if col == "ts" {
				b.WriteString(fmt.Sprintf("COALESCE($%d, now())", len(args)))
			} else {
				b.WriteString(fmt.Sprintf("$%d", len(args)))
			}
		}
		b.WriteString(")")
	}
	b.WriteString(suffix)
	return b.String(), args
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return ts, nil
}

var _ ports.Store = (*TimescaleStore)(nil)
