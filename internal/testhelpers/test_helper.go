package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/utils"
)

// TestHelper encapsulates all necessary components for running integration tests.
type TestHelper struct {
	T               *testing.T
	Ctx             context.Context
	BaseURL         string
	DB              *pgxpool.Pool
	PrivateKey      *rsa.PrivateKey
	DBEncryptionKey []byte

	// From ldflags
	AppName         string
	UniqueRunNumber string
	UniqueRunnerID  string

	// Repositories
	UserRepo     repositories.UserRepository
	PropertyRepo repositories.PropertyRepository
	NegRepo      repositories.NegotiationRepository
	LOIDocRepo   repositories.LOIDocumentRepository
}

// NewTestHelper sets up the entire testing environment by loading secrets, connecting
// to the DB, and initializing repositories. It's designed to be called once from a
// TestMain function.
func NewTestHelper(t *testing.T, appName, uniqueRunID, uniqueRunNum string) *TestHelper {
	// 1. Load environment
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	env := os.Getenv("ENV")
	if env == "" {
		log.Fatal("ENV env var is missing")
	}

	// 2. BWS Secrets Client
	client, err := utils.NewBWSSecretsClient()
	require.NoError(t, err, "Failed to init BWSSecretsClient")
	defer client.Close()

	// 3. Shared secrets (RSA key, DB encryption key)
	sharedProject := fmt.Sprintf("shared-%s", env)
	sharedSecrets, err := client.GetBWSSecrets(sharedProject)
	require.NoError(t, err, "Failed to fetch shared secrets")

	privateKeyB64, ok := sharedSecrets["RSA_PRIVATE_KEY_BASE64"]
	require.True(t, ok && privateKeyB64 != "", "RSA_PRIVATE_KEY_BASE64 not found")
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	require.NoError(t, err)
	block, _ := pem.Decode(privateKeyPEM)
	require.NotNil(t, block, "Failed to parse PEM block for RSA_PRIVATE_KEY_BASE64")
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	require.NoError(t, err)

	dbEncB64, ok := sharedSecrets["DB_ENCRYPTION_KEY_BASE64"]
	require.True(t, ok && dbEncB64 != "", "DB_ENCRYPTION_KEY_BASE64 not found")
	dbEncryptionKey, err := base64.StdEncoding.DecodeString(dbEncB64)
	require.NoError(t, err)
	require.Len(t, dbEncryptionKey, 32, "DB encryption key must be 32 bytes")

	// 4. App-specific secrets (DB_URL)
	appProject := fmt.Sprintf("%s-%s", appName, env)
	appSecrets, err := client.GetBWSSecrets(appProject)
	require.NoError(t, err)
	dbURL, ok := appSecrets["DB_URL"]
	require.True(t, ok && dbURL != "", "DB_URL not found in appSecrets")

	// 5. Connect to DB with isolated role
	effectiveURL, err := utils.WithIsolatedRole(dbURL, uniqueRunID, uniqueRunNum)
	require.NoError(t, err)

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, effectiveURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	// 6. Initialize repositories and the helper
	return &TestHelper{
		T:               t,
		Ctx:             ctx,
		BaseURL:         baseURL,
		DB:              dbPool,
		PrivateKey:      privateKey,
		DBEncryptionKey: dbEncryptionKey,
		AppName:         appName,
		UniqueRunnerID:  uniqueRunID,
		UniqueRunNumber: uniqueRunNum,
		UserRepo:        repositories.NewUserRepository(dbPool, dbEncryptionKey),
		PropertyRepo:    repositories.NewPropertyRepository(dbPool),
		NegRepo:         repositories.NewNegotiationRepository(dbPool),
		LOIDocRepo:      repositories.NewLOIDocumentRepository(dbPool),
	}
}
