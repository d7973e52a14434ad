package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"leadscout/models"
)

// PostgresWriter persists discovered leads to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id               SERIAL PRIMARY KEY,
			name             TEXT         NOT NULL,
			city             TEXT         NOT NULL DEFAULT '',
			address          TEXT         NOT NULL DEFAULT '',
			website          TEXT         NOT NULL DEFAULT '',
			instagram_handle VARCHAR(100) NOT NULL DEFAULT '',
			instagram_url    TEXT         NOT NULL DEFAULT '',
			tiktok_handle    VARCHAR(100) NOT NULL DEFAULT '',
			tiktok_url       TEXT         NOT NULL DEFAULT '',
			follower_count   INTEGER      NOT NULL DEFAULT 0,
			bio              TEXT         NOT NULL DEFAULT '',
			source           VARCHAR(50)  NOT NULL,
			notes            TEXT         NOT NULL DEFAULT '',
			google_place_id  VARCHAR(100) NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_instagram_handle
			ON leads(instagram_handle) WHERE instagram_handle <> '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_tiktok_handle
			ON leads(tiktok_handle) WHERE tiktok_handle <> '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_place_id
			ON leads(google_place_id) WHERE google_place_id <> '';
		CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
		CREATE INDEX IF NOT EXISTS idx_leads_city   ON leads(city);

		CREATE TABLE IF NOT EXISTS search_runs (
			id         SERIAL PRIMARY KEY,
			run_id     VARCHAR(36) UNIQUE NOT NULL,
			query      TEXT        NOT NULL,
			source     VARCHAR(50) NOT NULL,
			status     VARCHAR(20) NOT NULL DEFAULT 'pending',
			found      INTEGER     NOT NULL DEFAULT 0,
			saved      INTEGER     NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// Write batch-inserts leads, skipping any whose platform handle or place ID
// is already stored. It returns the number of newly inserted rows.
func (pw *PostgresWriter) Write(leads []*models.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	inserted := 0
	const batchSize = 50
	for i := 0; i < len(leads); i += batchSize {
		end := i + batchSize
		if end > len(leads) {
			end = len(leads)
		}
		n, err := pw.insertBatch(leads[i:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Lead) (int, error) {
	const cols = 14
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := 0; j < cols; j++ {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.Name, l.City, l.Address, l.Website,
			l.InstagramHandle, l.InstagramURL, l.TikTokHandle, l.TikTokURL,
			l.FollowerCount, l.Bio, l.Source, l.Notes, l.GooglePlaceID, l.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO leads (name, city, address, website,
			instagram_handle, instagram_url, tiktok_handle, tiktok_url,
			follower_count, bio, source, notes, google_place_id, created_at)
		VALUES %s
		ON CONFLICT DO NOTHING
	`, strings.Join(valueStrings, ","))

	res, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert leads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: rows affected: %w", err)
	}
	return int(n), nil
}

// CreateSearchRun records a new discovery invocation.
func (pw *PostgresWriter) CreateSearchRun(run *models.SearchRun) error {
	_, err := pw.db.Exec(`
		INSERT INTO search_runs (run_id, query, source, status)
		VALUES ($1, $2, $3, $4)
	`, run.RunID, run.Query, run.Source, run.Status)
	if err != nil {
		return fmt.Errorf("postgres: create search run: %w", err)
	}
	return nil
}

// FinishSearchRun stores the final state and counts of a discovery run.
func (pw *PostgresWriter) FinishSearchRun(runID, status string, found, saved int) error {
	_, err := pw.db.Exec(`
		UPDATE search_runs SET status = $2, found = $3, saved = $4
		WHERE run_id = $1
	`, runID, status, found, saved)
	if err != nil {
		return fmt.Errorf("postgres: finish search run: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves stored leads, newest first, optionally filtered by
// source and city. Empty filter values match everything.
func (pw *PostgresWriter) FetchAll(source, city string) ([]*models.Lead, error) {
	rows, err := pw.db.Query(`
		SELECT id, name, city, address, website,
			instagram_handle, instagram_url, tiktok_handle, tiktok_url,
			follower_count, bio, source, notes, google_place_id, created_at
		FROM leads
		WHERE ($1 = '' OR source = $1)
		  AND ($2 = '' OR city ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
	`, source, city)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l := &models.Lead{}
		if err := rows.Scan(
			&l.ID, &l.Name, &l.City, &l.Address, &l.Website,
			&l.InstagramHandle, &l.InstagramURL, &l.TikTokHandle, &l.TikTokURL,
			&l.FollowerCount, &l.Bio, &l.Source, &l.Notes, &l.GooglePlaceID, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
