// internal/controllers/documents_controller.go

package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/middleware"
	"github.com/surepeps/negotiation-service/internal/services"
	"github.com/surepeps/negotiation-service/internal/utils"
)

type DocumentsController struct {
	uploadService *services.UploadService
	negService    *services.NegotiationService
}

func NewDocumentsController(
	uploadService *services.UploadService,
	negService *services.NegotiationService,
) *DocumentsController {
	return &DocumentsController{
		uploadService: uploadService,
		negService:    negService,
	}
}

// ----------------------------------------------------------------
// POST /api/v1/documents/loi  (multipart: negotiation_id + file)
// ----------------------------------------------------------------
func (c *DocumentsController) UploadLOIHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	if err := r.ParseMultipartForm(constants.MaxLOIUploadBytes); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart body", nil, err)
		return
	}

	negotiationID, err := uuid.Parse(r.FormValue("negotiation_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid negotiation_id", nil, err)
		return
	}

	party, svcErr := c.negService.PartyFor(ctx, userID, negotiationID)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot upload document")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing file part", nil, err)
		return
	}
	defer file.Close()

	resp, svcErr := c.uploadService.SaveLOI(
		ctx,
		negotiationID,
		party,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot store letter of intention")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}
