package models

import (
	"time"

	"github.com/google/uuid"
)

// LOIDocument is one uploaded letter-of-intent file. A negotiation keeps a
// pointer to the latest document's URL; earlier uploads stay on record.
type LOIDocument struct {
	ID            uuid.UUID `json:"id"`
	NegotiationID uuid.UUID `json:"negotiation_id"`
	UploadedBy    PartyType `json:"uploaded_by"`
	FileName      string    `json:"file_name"`
	ContentType   string    `json:"content_type"`
	SizeBytes     int64     `json:"size_bytes"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
}
