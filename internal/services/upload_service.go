package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/dtos"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/utils"
)

// Accepted LOI document types.
var loiContentTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

/*
UploadService stores letter-of-intention documents on local disk and
records them in loi_documents. The returned URL is what a buyer submits
back with the resubmitLOI action.
*/
type UploadService struct {
	docRepo   repositories.LOIDocumentRepository
	uploadDir string
	appURL    string
}

func NewUploadService(docRepo repositories.LOIDocumentRepository, uploadDir, appURL string) *UploadService {
	return &UploadService{
		docRepo:   docRepo,
		uploadDir: uploadDir,
		appURL:    appURL,
	}
}

// SaveLOI validates and persists one uploaded document.
func (s *UploadService) SaveLOI(
	ctx context.Context,
	negotiationID uuid.UUID,
	uploadedBy models.PartyType,
	fileName string,
	contentType string,
	size int64,
	file io.Reader,
) (*dtos.LOIUploadResponse, error) {
	if size <= 0 || size > constants.MaxLOIUploadBytes {
		return nil, utils.ErrLOIRequired
	}
	ext, ok := loiContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, utils.ErrLOIRequired
	}

	docID := uuid.New()
	storedName := docID.String() + ext

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}
	dst, err := os.Create(filepath.Join(s.uploadDir, storedName))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, constants.MaxLOIUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if written > constants.MaxLOIUploadBytes {
		return nil, utils.ErrLOIRequired
	}

	doc := &models.LOIDocument{
		ID:            docID,
		NegotiationID: negotiationID,
		UploadedBy:    uploadedBy,
		FileName:      filepath.Base(fileName),
		ContentType:   contentType,
		SizeBytes:     written,
		URL:           fmt.Sprintf("%s/uploads/loi/%s", s.appURL, storedName),
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return &dtos.LOIUploadResponse{
		DocumentID: doc.ID,
		URL:        doc.URL,
		FileName:   doc.FileName,
		SizeBytes:  doc.SizeBytes,
	}, nil
}
