package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/models"
)

func TestExpirySweepMarksLapsedSessionsOnce(t *testing.T) {
	env := newTestEnv(t)
	lapsed := env.seedNegotiation(t, models.NegotiationTypePrice, models.PartySeller)
	fresh := env.seedNegotiation(t, models.NegotiationTypeLOI, models.PartySeller)

	notifier := NewNotificationService(nil, nil, "no-reply@test.dev", "+10005550006", true, "http://localhost:8080")
	sweep := NewExpiryService(env.negRepo, env.propRepo, env.userRepo, notifier)

	later := testNow.Add(constants.ResponseWindow + time.Hour)
	sweep.now = func() time.Time { return later }

	// Keep the second session inside its window.
	env.setNow(later)
	touched, err := env.negRepo.CounterOfferAtomic(
		context.Background(), fresh.ID, fresh.RowVersion, models.PartySeller,
		48_000_000, fresh.InspectionDate, fresh.InspectionTime, false,
	)
	require.NoError(t, err)

	require.NoError(t, sweep.RunExpirySweep(context.Background()))

	after, err := env.negRepo.GetByID(context.Background(), lapsed.ID)
	require.NoError(t, err)
	require.NotNil(t, after.ExpiryNotifiedAt)

	untouched, err := env.negRepo.GetByID(context.Background(), touched.ID)
	require.NoError(t, err)
	require.Nil(t, untouched.ExpiryNotifiedAt)

	// A second run finds nothing new.
	firstMark := *after.ExpiryNotifiedAt
	sweep.now = func() time.Time { return later.Add(time.Hour) }
	require.NoError(t, sweep.RunExpirySweep(context.Background()))

	again, err := env.negRepo.GetByID(context.Background(), lapsed.ID)
	require.NoError(t, err)
	require.Equal(t, firstMark, *again.ExpiryNotifiedAt)
}

func TestExpirySweepSkipsTerminalSessions(t *testing.T) {
	env := newTestEnv(t)
	n := env.seedNegotiation(t, models.NegotiationTypePrice, models.PartySeller)

	_, err := env.negRepo.RejectAtomic(context.Background(), n.ID, n.RowVersion, models.PartySeller)
	require.NoError(t, err)

	notifier := NewNotificationService(nil, nil, "no-reply@test.dev", "+10005550006", true, "http://localhost:8080")
	sweep := NewExpiryService(env.negRepo, env.propRepo, env.userRepo, notifier)
	sweep.now = func() time.Time { return testNow.Add(3 * constants.ResponseWindow) }

	require.NoError(t, sweep.RunExpirySweep(context.Background()))

	after, err := env.negRepo.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	require.Nil(t, after.ExpiryNotifiedAt)
}

func TestMutationClearsExpiryNotified(t *testing.T) {
	env := newTestEnv(t)
	n := env.seedNegotiation(t, models.NegotiationTypePrice, models.PartyBuyer)

	require.NoError(t, env.negRepo.SetExpiryNotified(context.Background(), n.ID))

	updated, err := env.negRepo.CounterOfferAtomic(
		context.Background(), n.ID, n.RowVersion, models.PartyBuyer,
		45_000_000, n.InspectionDate, n.InspectionTime, false,
	)
	require.NoError(t, err)
	require.Nil(t, updated.ExpiryNotifiedAt)
}
