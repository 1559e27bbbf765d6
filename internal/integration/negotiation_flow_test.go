//go:build (dev_test || dev || staging_test) && integration

package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/dtos"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/routes"
	"github.com/surepeps/negotiation-service/internal/utils"
)

const testAskingPrice = 150_000_000

// nextBookableSlot returns a date 2+ days out that the calendar accepts,
// so tests stay green regardless of the day they run.
func nextBookableSlot() (string, string) {
	d := time.Now().AddDate(0, 0, 2)
	for !utils.IsBookableDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(constants.InspectionDateLayout), "10:00"
}

func negotiationURL(id fmt.Stringer, role string) string {
	u := h.BaseURL + routes.NegotiationsBase + "/" + id.String()
	if role != "" {
		u += "?role=" + role
	}
	return u
}

/*
───────────────────────────────────────────────────────────────────
 1. Health Check
───────────────────────────────────────────────────────────────────
*/
func TestHealthCheck(t *testing.T) {
	h.T = t
	u := h.BaseURL + routes.Health
	req := h.BuildAuthRequest("GET", u, "", nil, "web", "203.0.113.10")
	client := h.NewHTTPClient()
	resp := h.DoRequest(req, client)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	t.Logf("Health => %s", string(body))
}

/*
───────────────────────────────────────────────────────────────────
 2. Full price flow: counter -> accept -> confirm inspection
───────────────────────────────────────────────────────────────────
*/
func TestPriceNegotiationFullFlow(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	prop := h.CreateTestProperty(ctx, testSeller.ID, testAskingPrice)
	neg := h.CreateTestNegotiation(ctx, prop.ID, testBuyer.ID, testSeller.ID, 130_000_000)

	buyerIP := "203.0.113.11"
	sellerIP := "203.0.113.12"
	buyerJWT := h.CreateWebJWT(testBuyer.ID, buyerIP)
	sellerJWT := h.CreateWebJWT(testSeller.ID, sellerIP)
	client := h.NewHTTPClient()

	date, slot := nextBookableSlot()

	// 2.1 Seller fetches the session and sees it is their turn.
	req := h.BuildAuthRequest("GET", negotiationURL(neg.ID, utils.SellerAccountType), sellerJWT, nil, "web", sellerIP)
	resp := h.DoRequest(req, client)
	var details dtos.NegotiationDetailsDTO
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &details))
	require.True(t, details.IsYourTurn)
	require.Equal(t, "price", details.CurrentStep)
	require.Equal(t, float64(testAskingPrice)*constants.MinCounterOfferRatio, details.MinAcceptableOffer)

	// 2.2 Seller counters at 140M.
	body, _ := json.Marshal(dtos.CounterOfferRequest{
		NegotiationID:  neg.ID,
		RowVersion:     details.RowVersion,
		CounterPrice:   140_000_000,
		InspectionDate: date,
		InspectionTime: slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsCounter, sellerJWT, body, "web", sellerIP)
	resp = h.DoRequest(req, client)
	var countered dtos.NegotiationActionResponse
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &countered))
	require.Equal(t, 1, countered.Negotiation.CounterCount)
	require.Equal(t, "buyer", countered.Negotiation.PendingResponseFrom)
	require.NotNil(t, countered.Negotiation.SellerCounterOffer)

	// 2.3 Buyer accepts and books the inspection.
	body, _ = json.Marshal(dtos.AcceptOfferRequest{
		NegotiationID:  neg.ID,
		RowVersion:     countered.Negotiation.RowVersion,
		InspectionDate: date,
		InspectionTime: slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsAccept, buyerJWT, body, "web", buyerIP)
	resp = h.DoRequest(req, client)
	var accepted dtos.NegotiationActionResponse
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &accepted))
	require.Equal(t, "INSPECTION", accepted.Negotiation.Stage)
	require.Equal(t, "seller", accepted.Negotiation.PendingResponseFrom)

	// 2.4 Seller confirms the stored slot, completing the flow.
	body, _ = json.Marshal(dtos.UpdateDateTimeRequest{
		NegotiationID:  neg.ID,
		RowVersion:     accepted.Negotiation.RowVersion,
		InspectionDate: date,
		InspectionTime: slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsDateTime, sellerJWT, body, "web", sellerIP)
	resp = h.DoRequest(req, client)
	var completed dtos.NegotiationActionResponse
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &completed))
	require.Equal(t, "COMPLETED", completed.Negotiation.Stage)
	require.Equal(t, "completed", completed.Negotiation.CurrentStep)
}

/*
───────────────────────────────────────────────────────────────────
 3. Price bounds and turn enforcement over the wire
───────────────────────────────────────────────────────────────────
*/
func TestCounterOfferRejections(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	prop := h.CreateTestProperty(ctx, testSeller.ID, testAskingPrice)
	neg := h.CreateTestNegotiation(ctx, prop.ID, testBuyer.ID, testSeller.ID, 130_000_000)

	buyerIP := "203.0.113.21"
	sellerIP := "203.0.113.22"
	buyerJWT := h.CreateWebJWT(testBuyer.ID, buyerIP)
	sellerJWT := h.CreateWebJWT(testSeller.ID, sellerIP)
	client := h.NewHTTPClient()
	date, slot := nextBookableSlot()

	// 3.1 Buyer acts out of turn.
	body, _ := json.Marshal(dtos.CounterOfferRequest{
		NegotiationID:  neg.ID,
		RowVersion:     neg.RowVersion,
		CounterPrice:   135_000_000,
		InspectionDate: date,
		InspectionTime: slot,
	})
	req := h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsCounter, buyerJWT, body, "web", buyerIP)
	resp := h.DoRequest(req, client)
	raw := h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 400, resp.StatusCode, raw)
	var errBody utils.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &errBody))
	require.Equal(t, utils.ErrNotYourTurn.Error(), errBody.Code)

	// 3.2 Seller counters, then the buyer goes below the 80% floor.
	body, _ = json.Marshal(dtos.CounterOfferRequest{
		NegotiationID:  neg.ID,
		RowVersion:     neg.RowVersion,
		CounterPrice:   140_000_000,
		InspectionDate: date,
		InspectionTime: slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsCounter, sellerJWT, body, "web", sellerIP)
	resp = h.DoRequest(req, client)
	raw = h.ReadBody(resp)
	resp.Body.Close()
	var countered dtos.NegotiationActionResponse
	require.Equal(t, 200, resp.StatusCode, raw)
	require.NoError(t, json.Unmarshal([]byte(raw), &countered))

	body, _ = json.Marshal(dtos.CounterOfferRequest{
		NegotiationID:  neg.ID,
		RowVersion:     countered.Negotiation.RowVersion,
		CounterPrice:   100_000_000, // < 80% of 150M
		InspectionDate: date,
		InspectionTime: slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsCounter, buyerJWT, body, "web", buyerIP)
	resp = h.DoRequest(req, client)
	raw = h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 400, resp.StatusCode, raw)
	require.NoError(t, json.Unmarshal([]byte(raw), &errBody))
	require.Equal(t, utils.ErrOfferBelowMinimum.Error(), errBody.Code)

	// 3.3 Stale row_version gets a 409 carrying the fresh row.
	body, _ = json.Marshal(dtos.CounterOfferRequest{
		NegotiationID:  neg.ID,
		RowVersion:     neg.RowVersion, // stale after 3.2's seller counter
		CounterPrice:   135_000_000,
		InspectionDate: date,
		InspectionTime: slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsCounter, buyerJWT, body, "web", buyerIP)
	resp = h.DoRequest(req, client)
	raw = h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 409, resp.StatusCode, raw)
	require.NoError(t, json.Unmarshal([]byte(raw), &errBody))
	require.Equal(t, utils.ErrCodeRowVersionConflict, errBody.Code)
	require.NotNil(t, errBody.Details, "conflict response should carry the refreshed row")
}

/*
───────────────────────────────────────────────────────────────────
 4. LOI review flow: requestChanges -> resubmit -> accept
───────────────────────────────────────────────────────────────────
*/
func TestLOIReviewFlow(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	prop := h.CreateTestProperty(ctx, testSeller.ID, testAskingPrice)
	neg := h.CreateTestLOINegotiation(ctx, prop.ID, testBuyer.ID, testSeller.ID,
		h.BaseURL+"/uploads/loi/original.pdf")

	buyerIP := "203.0.113.31"
	sellerIP := "203.0.113.32"
	buyerJWT := h.CreateWebJWT(testBuyer.ID, buyerIP)
	sellerJWT := h.CreateWebJWT(testSeller.ID, sellerIP)
	client := h.NewHTTPClient()
	date, slot := nextBookableSlot()

	// 4.1 Seller requests changes with feedback.
	note := "Please add the proposed closing date"
	body, _ := json.Marshal(dtos.NegotiationActionRequest{
		NegotiationID: neg.ID,
		RowVersion:    neg.RowVersion,
		Action:        "requestChanges",
		Note:          &note,
	})
	req := h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsAction, sellerJWT, body, "web", sellerIP)
	resp := h.DoRequest(req, client)
	var changed dtos.NegotiationActionResponse
	raw := h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, raw)
	require.NoError(t, json.Unmarshal([]byte(raw), &changed))
	require.Equal(t, "CHANGES_REQUESTED", changed.Negotiation.LOIStatus)
	require.Equal(t, "buyer", changed.Negotiation.PendingResponseFrom)

	// 4.2 Buyer resubmits a revised letter.
	loiURL := h.BaseURL + "/uploads/loi/revised.pdf"
	body, _ = json.Marshal(dtos.NegotiationActionRequest{
		NegotiationID: neg.ID,
		RowVersion:    changed.Negotiation.RowVersion,
		Action:        "resubmitLOI",
		LOIURL:        &loiURL,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsAction, buyerJWT, body, "web", buyerIP)
	resp = h.DoRequest(req, client)
	var resubmitted dtos.NegotiationActionResponse
	raw = h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, raw)
	require.NoError(t, json.Unmarshal([]byte(raw), &resubmitted))
	require.Equal(t, "PENDING", resubmitted.Negotiation.LOIStatus)
	require.Equal(t, "seller", resubmitted.Negotiation.PendingResponseFrom)
	require.Nil(t, resubmitted.Negotiation.ChangeRequestNote)

	// 4.3 Seller accepts and books the inspection.
	body, _ = json.Marshal(dtos.NegotiationActionRequest{
		NegotiationID:  neg.ID,
		RowVersion:     resubmitted.Negotiation.RowVersion,
		Action:         "accept",
		InspectionDate: &date,
		InspectionTime: &slot,
	})
	req = h.BuildAuthRequest("POST", h.BaseURL+routes.NegotiationsAction, sellerJWT, body, "web", sellerIP)
	resp = h.DoRequest(req, client)
	var accepted dtos.NegotiationActionResponse
	raw = h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, raw)
	require.NoError(t, json.Unmarshal([]byte(raw), &accepted))
	require.Equal(t, "INSPECTION", accepted.Negotiation.Stage)
	require.Equal(t, "ACCEPTED", accepted.Negotiation.LOIStatus)
	require.True(t, accepted.Negotiation.CanGoBackToLOI)
}

/*
───────────────────────────────────────────────────────────────────
 5. Available slots
───────────────────────────────────────────────────────────────────
*/
func TestAvailableSlotsEndpoint(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	prop := h.CreateTestProperty(ctx, testSeller.ID, testAskingPrice)
	buyerIP := "203.0.113.41"
	buyerJWT := h.CreateWebJWT(testBuyer.ID, buyerIP)
	client := h.NewHTTPClient()

	u := fmt.Sprintf("%s%s?property_id=%s", h.BaseURL, routes.NegotiationsSlots, prop.ID)
	req := h.BuildAuthRequest("GET", u, buyerJWT, nil, "web", buyerIP)
	resp := h.DoRequest(req, client)
	raw := h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, raw)

	var slots dtos.AvailableSlotsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &slots))
	require.Equal(t, "Africa/Lagos", slots.TimeZone)
	require.Len(t, slots.AvailableDates, constants.InspectionDaysAhead)
	require.Contains(t, slots.AvailableTimes, "08:00")
	require.Contains(t, slots.AvailableTimes, "18:00")

	// No Sundays in the offered dates.
	loc, _ := time.LoadLocation(slots.TimeZone)
	for _, d := range slots.AvailableDates {
		day, err := time.ParseInLocation(constants.InspectionDateLayout, d, loc)
		require.NoError(t, err)
		require.NotEqual(t, time.Sunday, day.Weekday(), "offered date %s is a Sunday", d)
	}
}

/*
───────────────────────────────────────────────────────────────────
 6. Auth gating
───────────────────────────────────────────────────────────────────
*/
func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	prop := h.CreateTestProperty(ctx, testSeller.ID, testAskingPrice)
	neg := h.CreateTestNegotiation(ctx, prop.ID, testBuyer.ID, testSeller.ID, 130_000_000)

	client := h.NewHTTPClient()
	req := h.BuildAuthRequest("GET", negotiationURL(neg.ID, utils.BuyerAccountType), "", nil, "web", "203.0.113.51")
	resp := h.DoRequest(req, client)
	defer resp.Body.Close()
	require.Equal(t, 401, resp.StatusCode)
}

func TestStrangerCannotFetchNegotiation(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	prop := h.CreateTestProperty(ctx, testSeller.ID, testAskingPrice)
	neg := h.CreateTestNegotiation(ctx, prop.ID, testBuyer.ID, testSeller.ID, 130_000_000)

	stranger := h.CreateTestUser(ctx, "stranger", models.PartyBuyer)
	ip := "203.0.113.52"
	jwtStr := h.CreateWebJWT(stranger.ID, ip)

	client := h.NewHTTPClient()
	req := h.BuildAuthRequest("GET", negotiationURL(neg.ID, utils.BuyerAccountType), jwtStr, nil, "web", ip)
	resp := h.DoRequest(req, client)
	defer resp.Body.Close()
	require.Equal(t, 403, resp.StatusCode)
}
