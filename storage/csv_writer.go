package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"leadscout/models"
)

// CSVWriter writes discovered leads to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// csvHeader mirrors the spreadsheet column layout.
var csvHeader = []string{
	"name", "city", "address", "website",
	"instagram_handle", "instagram_url", "tiktok_handle", "tiktok_url",
	"followers", "source", "date_added", "notes",
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends the given leads to the CSV file and reports how many rows
// were written.
func (c *CSVWriter) Write(leads []*models.Lead) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range leads {
		row := []string{
			l.Name,
			l.City,
			l.Address,
			l.Website,
			l.InstagramHandle,
			l.InstagramURL,
			l.TikTokHandle,
			l.TikTokURL,
			strconv.Itoa(l.FollowerCount),
			l.Source,
			l.CreatedAt.Format(time.RFC3339),
			l.Notes,
		}
		if err := c.writer.Write(row); err != nil {
			return 0, fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return 0, err
	}
	return len(leads), nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
