package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/utils"
)

type fakeLOIDocumentRepo struct {
	docs []*models.LOIDocument
}

func (r *fakeLOIDocumentRepo) Create(ctx context.Context, d *models.LOIDocument) error {
	cp := *d
	r.docs = append(r.docs, &cp)
	return nil
}

func (r *fakeLOIDocumentRepo) ListByNegotiation(ctx context.Context, negotiationID uuid.UUID) ([]*models.LOIDocument, error) {
	var out []*models.LOIDocument
	for _, d := range r.docs {
		if d.NegotiationID == negotiationID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestSaveLOIStoresFileAndRecord(t *testing.T) {
	dir := t.TempDir()
	docRepo := &fakeLOIDocumentRepo{}
	svc := NewUploadService(docRepo, dir, "http://localhost:8080")

	content := "fake pdf payload"
	negID := uuid.New()
	resp, err := svc.SaveLOI(
		context.Background(), negID, models.PartyBuyer,
		"letter of intent.pdf", "application/pdf",
		int64(len(content)), strings.NewReader(content),
	)
	require.NoError(t, err)
	require.Equal(t, "letter of intent.pdf", resp.FileName)
	require.Equal(t, int64(len(content)), resp.SizeBytes)
	require.Contains(t, resp.URL, "http://localhost:8080/uploads/loi/")
	require.True(t, strings.HasSuffix(resp.URL, ".pdf"))

	// File landed on disk under the document ID.
	stored, err := os.ReadFile(filepath.Join(dir, resp.DocumentID.String()+".pdf"))
	require.NoError(t, err)
	require.Equal(t, content, string(stored))

	// And the record is attached to the negotiation.
	docs, err := docRepo.ListByNegotiation(context.Background(), negID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, models.PartyBuyer, docs[0].UploadedBy)
}

func TestSaveLOIRejectsBadUploads(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(&fakeLOIDocumentRepo{}, dir, "http://localhost:8080")
	ctx := context.Background()

	_, err := svc.SaveLOI(ctx, uuid.New(), models.PartyBuyer,
		"notes.txt", "text/plain", 10, strings.NewReader("plain text"))
	require.ErrorIs(t, err, utils.ErrLOIRequired)

	_, err = svc.SaveLOI(ctx, uuid.New(), models.PartyBuyer,
		"empty.pdf", "application/pdf", 0, strings.NewReader(""))
	require.ErrorIs(t, err, utils.ErrLOIRequired)
}
