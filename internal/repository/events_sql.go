package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/nakagami/firebirdsql"

	"attendance-reporter/config"
	"attendance-reporter/internal/models"
)

// The access-control database stores the pass date as a day number with this
// offset from 1858-11-17 and the time of day as milliseconds since midnight.
const dayNumberOffset = 678576

// SQLEventSource implements EventSource on top of the access-control database
type SQLEventSource struct {
	db    *sql.DB
	query string
	loc   *time.Location
}

// OpenDB opens and pings the access-control database
func OpenDB(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}

	log.Printf("🗄️  Connected to %s database at %s:%d", cfg.Driver, cfg.Host, cfg.Port)
	return db, nil
}

func dataSourceName(cfg config.DBConfig) (string, error) {
	switch cfg.Driver {
	case "firebirdsql":
		return fmt.Sprintf("%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=60",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// NewSQLEventSource creates an event source for the given driver dialect.
// Pass timestamps are interpreted as wall-clock time in loc.
func NewSQLEventSource(db *sql.DB, driver string, src config.SourceConfig, loc *time.Location) (*SQLEventSource, error) {
	query, err := BuildEventQuery(driver, src)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &SQLEventSource{db: db, query: query, loc: loc}, nil
}

// BuildEventQuery renders the pass-event query for a driver dialect
func BuildEventQuery(driver string, src config.SourceConfig) (string, error) {
	var passDate, passTS, p1, p2, p3 string

	switch driver {
	case "firebirdsql":
		passDate = fmt.Sprintf("(DATE '1858-11-17' + (e.%s - %d))", src.DateField, dayNumberOffset)
		passTS = fmt.Sprintf("DATEADD(MILLISECOND, e.%s, CAST(%s AS TIMESTAMP))", src.TimeField, passDate)
		p1, p2, p3 = "?", "?", "?"
	case "postgres":
		passDate = fmt.Sprintf("(DATE '1858-11-17' + (e.%s - %d))", src.DateField, dayNumberOffset)
		passTS = fmt.Sprintf("(%s + e.%s * INTERVAL '1 millisecond')", passDate, src.TimeField)
		p1, p2, p3 = "$1", "$2", "$3"
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT\n")
	fmt.Fprintf(&b, "    %s AS pass_ts,\n", passTS)
	fmt.Fprintf(&b, "    e.%s AS employee_id,\n", src.EmployeeIDField)
	fmt.Fprintf(&b, "    e.%s AS card_id,\n", src.CardIDField)
	fmt.Fprintf(&b, "    TRIM(e.%s) AS department_name,\n", src.DepartmentField)
	fmt.Fprintf(&b, "    TRIM(e.%s) AS last_name,\n", src.LastNameField)
	fmt.Fprintf(&b, "    TRIM(e.%s) AS first_name,\n", src.FirstNameField)
	fmt.Fprintf(&b, "    TRIM(e.%s) AS middle_name,\n", src.MiddleNameField)
	fmt.Fprintf(&b, "    TRIM(e.%s) AS from_zone,\n", src.ZoneFromField)
	fmt.Fprintf(&b, "    TRIM(e.%s) AS to_zone,\n", src.ZoneToField)
	fmt.Fprintf(&b, "    e.%s AS event_code,\n", src.EventCodeField)
	fmt.Fprintf(&b, "    e.%s AS status_code\n", src.StatusField)
	fmt.Fprintf(&b, "FROM %s e\n", src.Table)
	fmt.Fprintf(&b, "WHERE TRIM(e.%s) = %s\n", src.DepartmentField, p1)
	fmt.Fprintf(&b, "  AND %s BETWEEN %s AND %s\n", passDate, p2, p3)
	fmt.Fprintf(&b, "ORDER BY pass_ts")
	return b.String(), nil
}

// FetchEvents reads the pass events of one department in [start, end]
func (s *SQLEventSource) FetchEvents(ctx context.Context, department string, start, end time.Time) ([]models.RawEvent, error) {
	from, to := start.Format("2006-01-02"), end.Format("2006-01-02")
	log.Printf("🔍 Fetching pass events: department=%s, %s..%s", department, from, to)

	rows, err := s.db.QueryContext(ctx, s.query, department, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %s: %w", department, err)
	}
	defer rows.Close()

	var events []models.RawEvent
	for rows.Next() {
		var (
			ts                              time.Time
			employeeID                      string
			card, dept, last, first, middle sql.NullString
			fromZone, toZone                sql.NullString
			eventCode, statusCode           sql.NullInt64
		)
		if err := rows.Scan(&ts, &employeeID, &card, &dept, &last, &first, &middle,
			&fromZone, &toZone, &eventCode, &statusCode); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		events = append(events, models.RawEvent{
			EmployeeID:     strings.TrimSpace(employeeID),
			Timestamp:      s.wallClock(ts),
			FromZone:       fromZone.String,
			ToZone:         toZone.String,
			StatusCode:     int(statusCode.Int64),
			CardID:         strings.TrimSpace(card.String),
			EventCode:      int(eventCode.Int64),
			DepartmentName: dept.String,
			LastName:       last.String,
			FirstName:      first.String,
			MiddleName:     middle.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events for %s: %w", department, err)
	}

	log.Printf("📥 Fetched %d pass events for %s", len(events), department)
	return events, nil
}

// wallClock pins a driver timestamp to the facility time zone without
// shifting the wall-clock reading.
func (s *SQLEventSource) wallClock(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), s.loc)
}
