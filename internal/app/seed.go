// internal/app/seed.go

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/utils"
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Sentinel IDs keep seeding idempotent across restarts.
var (
	seedBuyerID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	seedSellerID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	seedPropertyID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

	seedPriceNegotiationID = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	seedLOINegotiationID   = uuid.MustParse("55555555-5555-5555-5555-555555555555")
)

/*
SeedAllTestData inserts a demo buyer, seller, property and two in-flight
negotiations (one price, one LOI). Runs only behind the
seed_db_with_test_data flag.
*/
func SeedAllTestData(
	ctx context.Context,
	db repositories.DB,
	encryptionKey []byte,
) error {
	propRepo := repositories.NewPropertyRepository(db)
	userRepo := repositories.NewUserRepository(db, encryptionKey)
	negRepo := repositories.NewNegotiationRepository(db)

	if existing, err := propRepo.GetByID(ctx, seedPropertyID); err != nil {
		return fmt.Errorf("check existing seed property: %w", err)
	} else if existing != nil {
		utils.Logger.Info("negotiation-service: seed data already present; skipping seeding")
		return nil
	}

	buyer := &models.User{
		ID:            seedBuyerID,
		Email:         "demo.buyer@surepeps.com",
		PhoneNumber:   "+2348000000001",
		FirstName:     "Demo",
		LastName:      "Buyer",
		AccountType:   models.PartyBuyer,
		AccountStatus: models.AccountStatusActive,
	}
	seller := &models.User{
		ID:            seedSellerID,
		Email:         "demo.seller@surepeps.com",
		PhoneNumber:   "+2348000000002",
		FirstName:     "Demo",
		LastName:      "Seller",
		AccountType:   models.PartySeller,
		AccountStatus: models.AccountStatusActive,
	}
	for _, u := range []*models.User{buyer, seller} {
		if err := userRepo.Create(ctx, u); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	property := &models.Property{
		ID:           seedPropertyID,
		OwnerID:      seedSellerID,
		Title:        "4-Bedroom Duplex, Lekki Phase 1",
		PropertyType: models.PropertyTypeResidential,
		Price:        150_000_000,
		Address:      "12 Admiralty Way",
		City:         "Lagos",
		State:        "Lagos",
		TimeZone:     "Africa/Lagos",
		Latitude:     6.4478,
		Longitude:    3.4723,
		IsDemo:       true,
	}
	if err := propRepo.Create(ctx, property); err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("seed property: %w", err)
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	priceNeg := &models.Negotiation{
		ID:                  seedPriceNegotiationID,
		PropertyID:          seedPropertyID,
		BuyerID:             seedBuyerID,
		SellerID:            seedSellerID,
		Stage:               models.StageNegotiation,
		NegotiationType:     models.NegotiationTypePrice,
		PendingResponseFrom: models.PartySeller,
		NegotiationPrice:    130_000_000,
		InspectionDate:      tomorrow,
		InspectionTime:      "10:00",
	}
	loiURL := "https://docs.surepeps.com/demo/loi-sample.pdf"
	loiNeg := &models.Negotiation{
		ID:                  seedLOINegotiationID,
		PropertyID:          seedPropertyID,
		BuyerID:             seedBuyerID,
		SellerID:            seedSellerID,
		Stage:               models.StageNegotiation,
		NegotiationType:     models.NegotiationTypeLOI,
		PendingResponseFrom: models.PartySeller,
		NegotiationPrice:    150_000_000,
		LetterOfIntention:   &loiURL,
		LOIStatus:           models.LOIStatusPending,
		InspectionDate:      tomorrow,
		InspectionTime:      "10:00",
	}
	for _, n := range []*models.Negotiation{priceNeg, loiNeg} {
		if err := negRepo.Create(ctx, n); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("seed negotiation %s: %w", n.ID, err)
		}
	}

	utils.Logger.Info("negotiation-service: test data seeded")
	return nil
}
