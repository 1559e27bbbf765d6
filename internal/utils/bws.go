package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/bitwarden/sdk-go"
)

// bwsOrgID is the UUID of the Bitwarden organization that owns all
// projects and secrets. Change this here if the organization ever moves.
const bwsOrgID = "2f6c41c8-90bb-4f6e-9d1a-6c2e013ab04d"

// Retry parameters for the access-token login.
const (
	bwsLoginAttempts = 5
	bwsLoginBackoff  = 500 * time.Millisecond
)

// BWSSecretsClient wraps an authenticated Bitwarden SDK client.
type BWSSecretsClient struct {
	bw sdk.BitwardenClientInterface
}

// NewBWSSecretsClient logs in with the access token from the environment
// and returns a ready-to-use client. Login is retried with exponential
// backoff on rate-limit responses; sdk-go does not expose a typed error
// with a status code, so 429s are detected by string match.
func NewBWSSecretsClient() (*BWSSecretsClient, error) {
	accessToken := os.Getenv("BWS_ACCESS_TOKEN")
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("BWS_ACCESS_TOKEN env var is missing or empty")
	}

	bw, err := sdk.NewBitwardenClient(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("initialising Bitwarden SDK client: %w", err)
	}

	backoff := bwsLoginBackoff
	for attempt := 1; ; attempt++ {
		if err = bw.AccessTokenLogin(accessToken, nil); err == nil {
			return &BWSSecretsClient{bw: bw}, nil
		}
		if !isBWSRateLimited(err) {
			return nil, fmt.Errorf("Bitwarden access-token login failed: %w", err)
		}
		if attempt == bwsLoginAttempts {
			return nil, fmt.Errorf("Bitwarden access-token login failed after %d attempts: %w", bwsLoginAttempts, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}
}

func isBWSRateLimited(err error) bool {
	return strings.Contains(err.Error(), "429") ||
		strings.Contains(err.Error(), "Too Many Requests")
}

// Close releases resources held by the underlying SDK client.
func (c *BWSSecretsClient) Close() {
	if c != nil && c.bw != nil {
		c.bw.Close()
	}
}

// GetBWSSecrets resolves the named Bitwarden project and returns all of its
// key/value secrets as a map.
func (c *BWSSecretsClient) GetBWSSecrets(projectName string) (map[string]string, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, errors.New("projectName must not be empty")
	}

	projectID, err := c.resolveProjectID(projectName)
	if err != nil {
		return nil, err
	}

	// Sync pulls every secret in the organisation; filter down to the
	// resolved project.
	syncResp, err := c.bw.Secrets().Sync(bwsOrgID, nil)
	if err != nil {
		Logger.WithError(err).Error("Failed to sync Bitwarden secrets")
		return nil, fmt.Errorf("syncing Bitwarden secrets: %w", err)
	}

	secrets := make(map[string]string)
	for _, s := range syncResp.Secrets {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			secrets[s.Key] = s.Value
		}
	}
	if len(secrets) == 0 {
		return nil, fmt.Errorf("no secrets found for project %q", projectName)
	}
	return secrets, nil
}

func (c *BWSSecretsClient) resolveProjectID(projectName string) (string, error) {
	projectsResp, err := c.bw.Projects().List(bwsOrgID)
	if err != nil {
		Logger.WithError(err).Error("Failed to list Bitwarden projects")
		return "", fmt.Errorf("listing Bitwarden projects: %w", err)
	}
	for _, p := range projectsResp.Data {
		if strings.EqualFold(p.Name, projectName) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("project %q not found in organisation %s", projectName, bwsOrgID)
}
