//go:build (dev_test || dev || staging_test) && integration

package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/surepeps/negotiation-service/internal/config"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/testhelpers"
)

// Global test-level variables
var (
	h          *testhelpers.TestHelper
	cfg        *config.Config
	testBuyer  *models.User
	testSeller *models.User
)

// TestMain sets up a single TestHelper for all integration tests in this package.
func TestMain(m *testing.M) {
	// Required ldflags checks (these are read by config.LoadConfig)
	if config.AppName == "" {
		log.Fatal("config.AppName is empty or not set (ldflags missing?)")
	}
	if config.UniqueRunnerID == "" {
		log.Fatal("config.UniqueRunnerID is empty or not set")
	}
	if config.UniqueRunNumber == "" {
		log.Fatal("config.UniqueRunNumber is empty or not set")
	}

	// Load the full application config, which includes fetching LD flags.
	cfg = config.LoadConfig()

	// Use a dummy testing.T to initialize the helper.
	t := &testing.T{}
	h = testhelpers.NewTestHelper(t, config.AppName, config.UniqueRunnerID, config.UniqueRunNumber)

	ctx := context.Background()

	// Reusable buyer and seller accounts for all flows in this package.
	testBuyer = h.CreateTestUser(ctx, "integration-buyer", models.PartyBuyer)
	testSeller = h.CreateTestUser(ctx, "integration-seller", models.PartySeller)

	log.Printf("negotiation-service integration tests: DB connected, baseURL=%s, env=%s", h.BaseURL, os.Getenv("ENV"))

	// Give DB a moment to be fully ready
	time.Sleep(100 * time.Millisecond)

	code := m.Run()

	os.Exit(code)
}
