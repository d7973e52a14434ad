package storage

import "leadscout/models"

// LeadWriter is the interface any lead sink must satisfy. Write reports how
// many of the given leads the sink actually accepted, so deduplicating
// backends can surface the new-row count.
type LeadWriter interface {
	Write(leads []*models.Lead) (int, error)
	Close() error
}
