// internal/controllers/negotiation_controller.go

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/dtos"
	"github.com/surepeps/negotiation-service/internal/middleware"
	"github.com/surepeps/negotiation-service/internal/services"
	"github.com/surepeps/negotiation-service/internal/utils"
)

var negotiationValidate = validator.New()

type NegotiationController struct {
	negService      *services.NegotiationService
	scheduleService *services.ScheduleService
}

func NewNegotiationController(
	negService *services.NegotiationService,
	scheduleService *services.ScheduleService,
) *NegotiationController {
	return &NegotiationController{
		negService:      negService,
		scheduleService: scheduleService,
	}
}

// ----------------------------------------------------------------
// GET /api/v1/negotiations?role=buyer|seller
// ----------------------------------------------------------------
func (c *NegotiationController) ListNegotiationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	results, svcErr := c.negService.ListForUser(ctx, userID, r.URL.Query().Get("role"))
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Failed to list negotiations")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ListNegotiationsResponse{
		Total:   len(results),
		Results: results,
	})
}

// ----------------------------------------------------------------
// GET /api/v1/negotiations/{id}?role=buyer|seller
// ----------------------------------------------------------------
func (c *NegotiationController) GetNegotiationHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	negotiationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid negotiation id", nil, err)
		return
	}
	roleHint := r.URL.Query().Get("role")

	dto, svcErr := c.negService.FetchDetails(ctx, userID, negotiationID, roleHint)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Failed to fetch negotiation")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto)
}

// ----------------------------------------------------------------
// POST /api/v1/negotiations/accept
// ----------------------------------------------------------------
func (c *NegotiationController) AcceptOfferHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	var req dtos.AcceptOfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, svcErr := c.negService.AcceptOffer(ctx, userID, req)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot accept offer")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NegotiationActionResponse{Negotiation: *dto})
}

// ----------------------------------------------------------------
// POST /api/v1/negotiations/counter
// ----------------------------------------------------------------
func (c *NegotiationController) CounterOfferHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	var req dtos.CounterOfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, svcErr := c.negService.SubmitCounterOffer(ctx, userID, req)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot submit counter-offer")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NegotiationActionResponse{Negotiation: *dto})
}

// ----------------------------------------------------------------
// POST /api/v1/negotiations/action
// ----------------------------------------------------------------
func (c *NegotiationController) ActionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	var req dtos.NegotiationActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, svcErr := c.negService.SubmitAction(ctx, userID, req)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot apply negotiation action")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NegotiationActionResponse{Negotiation: *dto})
}

// ----------------------------------------------------------------
// POST /api/v1/negotiations/datetime
// ----------------------------------------------------------------
func (c *NegotiationController) DateTimeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	var req dtos.UpdateDateTimeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, svcErr := c.negService.UpdateInspectionDateTime(ctx, userID, req)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot update inspection date/time")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NegotiationActionResponse{Negotiation: *dto})
}

// ----------------------------------------------------------------
// POST /api/v1/negotiations/reopen
// ----------------------------------------------------------------
func (c *NegotiationController) ReopenHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	var req dtos.ReopenNegotiationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, svcErr := c.negService.Reopen(ctx, userID, req)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Cannot reopen negotiation")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NegotiationActionResponse{Negotiation: *dto})
}

// ----------------------------------------------------------------
// GET /api/v1/negotiations/slots?property_id=...
// ----------------------------------------------------------------
func (c *NegotiationController) AvailableSlotsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.UserIDFromContext(ctx); !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil)
		return
	}

	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property_id", nil, err)
		return
	}

	resp, svcErr := c.scheduleService.AvailableSlots(ctx, propertyID)
	if svcErr != nil {
		respondNegotiationError(w, svcErr, "Failed to list inspection slots")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// shared helpers
// ----------------------------------------------------------------

// decodeAndValidate parses the JSON body and runs the struct validators.
// Writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return false
	}
	if err := negotiationValidate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, validationErrors.Error(), nil, err)
			return false
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request", nil, err)
		return false
	}
	return true
}

// respondNegotiationError maps service errors onto the JSON envelope.
func respondNegotiationError(w http.ResponseWriter, err error, publicMessage string) {
	switch e := err.(type) {
	case *utils.RowVersionConflictError:
		utils.RespondErrorWithCode(
			w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
			constants.ErrMsgRowVersionConflict, e.Current, err,
		)
		return
	default:
		if errors.Is(err, utils.ErrNegotiationNotFound) {
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Negotiation not found", nil, err,
			)
			return
		}
		if errors.Is(err, utils.ErrNotParticipant) {
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodeForbidden,
				"You are not a participant in this negotiation", nil, err,
			)
			return
		}
		if errors.Is(err, utils.ErrNotYourTurn) ||
			errors.Is(err, utils.ErrWrongStage) ||
			errors.Is(err, utils.ErrNegotiationExpired) ||
			errors.Is(err, utils.ErrNotExpired) ||
			errors.Is(err, utils.ErrCounterLimitReached) ||
			errors.Is(err, utils.ErrOfferBelowMinimum) ||
			errors.Is(err, utils.ErrOfferAboveAsking) ||
			errors.Is(err, utils.ErrFeedbackRequired) ||
			errors.Is(err, utils.ErrLOIRequired) ||
			errors.Is(err, utils.ErrInvalidSlot) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, err.Error(), publicMessage, nil, err,
			)
			return
		}
		if errors.Is(err, utils.ErrNoRowsUpdated) {
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
				constants.ErrMsgNoRowsUpdated, nil, err,
			)
			return
		}
		utils.Logger.WithError(err).Error(publicMessage)
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			publicMessage, nil, err,
		)
	}
}
