package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"espritjobs/internal/jobs"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("espritjobs/store")

const schema = `
create table if not exists jobs (
	job_id integer primary key,
	title text not null,
	company text not null,
	location text not null,
	description text not null,
	requirements text not null,
	posted_date text not null,
	url text not null,
	image_url text,
	company_logo_url text,
	employment_type text,
	industry text,
	job_function text,
	closing_date text,
	added_by_name text,
	added_by_company text,
	scraped_at text not null
);
`

// ArchiveConfig selects where records are archived. Url takes precedence
// over File.
type ArchiveConfig struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c ArchiveConfig) Enabled() bool {
	return c.File != "" || c.Url != ""
}

func (c ArchiveConfig) OpenDB() (*sql.DB, error) {
	if c.Url != "" {
		values := url.Values{}
		if c.AuthToken != "" {
			values.Add("authToken", c.AuthToken)
		}
		target := c.Url
		if len(values) > 0 {
			target += "?" + values.Encode()
		}
		return sql.Open("libsql", target)
	}
	if c.File == "" {
		return nil, fmt.Errorf("neither an archive file nor url was specified")
	}

	if c.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(c.File), 0755)
		if err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", c.File)
	if err != nil {
		return nil, err
	}
	// sqlite only supports one writer at a time
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Archive keeps every record ever collected in a sql table keyed by job id.
type Archive struct {
	db *sql.DB
}

func OpenArchive(ctx context.Context, c ArchiveConfig) (*Archive, error) {
	db, err := c.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return NewArchive(ctx, db)
}

func NewArchive(ctx context.Context, db *sql.DB) (*Archive, error) {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Save inserts records, rows that already exist are left untouched.
func (a *Archive) Save(ctx context.Context, records []jobs.Record) (int, error) {
	ctx, span := tracer.Start(ctx, "archive:Save", trace.WithAttributes(
		attribute.Int("records", len(records)),
	))
	defer span.End()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, r := range records {
		res, err := tx.ExecContext(
			ctx,
			`insert or ignore into jobs (
				job_id, title, company, location, description, requirements,
				posted_date, url, image_url, company_logo_url, employment_type,
				industry, job_function, closing_date, added_by_name,
				added_by_company, scraped_at
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.JobID, r.Title, r.Company, r.Location, r.Description, r.Requirements,
			r.PostedDate, r.URL, r.ImageURL, r.CompanyLogoURL, r.EmploymentType,
			r.Industry, r.JobFunction, r.ClosingDate, r.AddedByName,
			r.AddedByCompany, r.ScrapedAt,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert record")
			return 0, fmt.Errorf("insert job %d: %w", r.JobID, err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			inserted += int(n)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// KnownIDs returns the ID of every archived record.
func (a *Archive) KnownIDs(ctx context.Context) ([]int, error) {
	rows, err := a.db.QueryContext(ctx, "select job_id from jobs order by job_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		err := rows.Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "select count(*) from jobs").Scan(&n)
	return n, err
}

func (a *Archive) Get(ctx context.Context, id int) (jobs.Record, error) {
	var r jobs.Record
	err := a.db.QueryRowContext(
		ctx,
		`select job_id, title, company, location, description, requirements,
			posted_date, url, image_url, company_logo_url, employment_type,
			industry, job_function, closing_date, added_by_name,
			added_by_company, scraped_at
		from jobs where job_id = ?`,
		id,
	).Scan(
		&r.JobID, &r.Title, &r.Company, &r.Location, &r.Description, &r.Requirements,
		&r.PostedDate, &r.URL, &r.ImageURL, &r.CompanyLogoURL, &r.EmploymentType,
		&r.Industry, &r.JobFunction, &r.ClosingDate, &r.AddedByName,
		&r.AddedByCompany, &r.ScrapedAt,
	)
	return r, err
}
