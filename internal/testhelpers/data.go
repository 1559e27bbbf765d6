package testhelpers

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/utils"
)

// UniquePhone generates a phone number in the reserved test range.
func UniquePhone() string {
	return fmt.Sprintf("%s%09d", utils.TestPhoneNumberBase, rand.Intn(1e9))
}

// UniqueEmail generates an email that utils.TestEmailRegex recognizes as
// test data, so seeded rows can be told apart from real ones.
func UniqueEmail() string {
	return fmt.Sprintf("%d%s", rand.Intn(1e9), utils.TestEmailSuffix)
}

// CreateTestUser creates and persists a user on the given side. The label
// becomes the last name so rows are recognizable in a shared database.
func (h *TestHelper) CreateTestUser(ctx context.Context, label string, party models.PartyType) *models.User {
	u := &models.User{
		ID:            uuid.New(),
		Email:         UniqueEmail(),
		PhoneNumber:   UniquePhone(),
		FirstName:     "Test",
		LastName:      label,
		AccountType:   party,
		AccountStatus: models.AccountStatusActive,
	}
	require.NoError(h.T, h.UserRepo.Create(ctx, u), "Failed to create test user")

	created, err := h.UserRepo.GetByID(ctx, u.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch user immediately after creation")
	return created
}

// CreateTestProperty creates and persists a Lagos property owned by the seller.
func (h *TestHelper) CreateTestProperty(ctx context.Context, ownerID uuid.UUID, price float64) *models.Property {
	p := &models.Property{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        "Test Duplex " + utils.RandomString(6),
		PropertyType: models.PropertyTypeResidential,
		Price:        price,
		Address:      "1 Test Close",
		City:         "Lagos",
		State:        "Lagos",
		TimeZone:     "Africa/Lagos",
		IsDemo:       true,
	}
	require.NoError(h.T, h.PropertyRepo.Create(ctx, p), "Failed to create test property")

	created, err := h.PropertyRepo.GetByID(ctx, p.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch property immediately after creation")
	return created
}

// CreateTestNegotiation creates and persists a price negotiation with the
// buyer's opening offer awaiting the seller.
func (h *TestHelper) CreateTestNegotiation(ctx context.Context, propertyID, buyerID, sellerID uuid.UUID, offer float64) *models.Negotiation {
	n := &models.Negotiation{
		ID:                  uuid.New(),
		PropertyID:          propertyID,
		BuyerID:             buyerID,
		SellerID:            sellerID,
		Stage:               models.StageNegotiation,
		NegotiationType:     models.NegotiationTypePrice,
		PendingResponseFrom: models.PartySeller,
		NegotiationPrice:    offer,
	}
	require.NoError(h.T, h.NegRepo.Create(ctx, n), "Failed to create test negotiation")

	created, err := h.NegRepo.GetByID(ctx, n.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch negotiation immediately after creation")
	return created
}

// CreateTestLOINegotiation creates a persisted LOI-review negotiation with a
// submitted letter awaiting the seller.
func (h *TestHelper) CreateTestLOINegotiation(ctx context.Context, propertyID, buyerID, sellerID uuid.UUID, loiURL string) *models.Negotiation {
	n := &models.Negotiation{
		ID:                  uuid.New(),
		PropertyID:          propertyID,
		BuyerID:             buyerID,
		SellerID:            sellerID,
		Stage:               models.StageNegotiation,
		NegotiationType:     models.NegotiationTypeLOI,
		PendingResponseFrom: models.PartySeller,
		LetterOfIntention:   utils.Ptr(loiURL),
		LOIStatus:           models.LOIStatusPending,
	}
	require.NoError(h.T, h.NegRepo.Create(ctx, n), "Failed to create test negotiation")

	created, err := h.NegRepo.GetByID(ctx, n.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch negotiation immediately after creation")
	return created
}
