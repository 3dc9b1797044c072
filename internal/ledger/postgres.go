package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

const createTable = `
create table if not exists omr_results (
	id             bigserial primary key,
	student_name   text not null,
	roll_number    text not null,
	set_name       text not null,
	section_scores jsonb not null,
	marks_obtained integer not null,
	total_marks    integer not null,
	percentage     numeric(5,2) not null,
	created_at     timestamptz not null default now()
)`

// PostgresLedger stores rows in the omr_results table.
type PostgresLedger struct {
	DB *sql.DB
}

// OpenPostgres connects with the pgx driver, checks the connection and
// creates the table if it is missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresLedger, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	l := NewPostgres(db)
	if err := l.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// NewPostgres wraps an open database.
func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{DB: db}
}

// Migrate creates the results table if needed.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	if _, err := l.DB.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create omr_results: %w", err)
	}
	return nil
}

// Append inserts one row.
func (l *PostgresLedger) Append(ctx context.Context, row Row) error {
	js, err := json.Marshal(row.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode section scores: %w", err)
	}
	const q = `
insert into omr_results(student_name, roll_number, set_name, section_scores,
                        marks_obtained, total_marks, percentage)
values ($1,$2,$3,$4,$5,$6,$7)`
	_, err = l.DB.ExecContext(ctx, q,
		row.StudentName, row.RollNumber, row.SetName, js,
		row.MarksObtained, row.TotalMarks, row.Percentage)
	return err
}

// List returns every row in insertion order.
func (l *PostgresLedger) List(ctx context.Context) ([]Row, error) {
	const q = `
select student_name, roll_number, set_name, section_scores,
       marks_obtained, total_marks, percentage
from omr_results
order by id`
	rs, err := l.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	rows := make([]Row, 0)
	for rs.Next() {
		var (
			row Row
			js  []byte
		)
		if err := rs.Scan(&row.StudentName, &row.RollNumber, &row.SetName, &js,
			&row.MarksObtained, &row.TotalMarks, &row.Percentage); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(js, &row.Scores); err != nil {
			return nil, fmt.Errorf("failed to decode section scores: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, rs.Err()
}

// Close closes the database pool.
func (l *PostgresLedger) Close() error {
	return l.DB.Close()
}
