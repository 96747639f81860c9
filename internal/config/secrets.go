package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/bitwarden/sdk-go"
)

const (
	bwsLoginAttempts = 3
	bwsLoginBackoff  = time.Second
)

var secretKeys = []string{"DB_URL", "AUTH_PUBLIC_KEY_BASE64", "SENDGRID_API_KEY", "REDIS_URL", "LD_SDK_KEY"}

// collectSecrets reads every key in secretKeys through lookup. Missing
// keys map to "".
func collectSecrets(lookup func(string) string) map[string]string {
	out := make(map[string]string, len(secretKeys))
	for _, k := range secretKeys {
		out[k] = lookup(k)
	}
	return out
}

// secretsFromBitwarden loads the secrets stored in the Bitwarden Secrets
// Manager project called project.
func secretsFromBitwarden(accessToken, orgID, project string) (map[string]string, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, errors.New("BWS_ORGANIZATION_ID env var is missing")
	}

	client, err := sdk.NewBitwardenClient(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating bitwarden client: %w", err)
	}
	defer client.Close()

	if err := bwsLogin(client, accessToken); err != nil {
		return nil, err
	}
	projects, err := client.Projects().List(orgID)
	if err != nil {
		return nil, fmt.Errorf("listing bitwarden projects: %w", err)
	}
	synced, err := client.Secrets().Sync(orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("syncing bitwarden secrets: %w", err)
	}
	return projectSecrets(project, projects.Data, synced.Secrets)
}

func bwsLogin(client sdk.BitwardenClientInterface, accessToken string) error {
	var err error
	for attempt := 1; attempt <= bwsLoginAttempts; attempt++ {
		if err = client.AccessTokenLogin(accessToken, nil); err == nil {
			return nil
		}
		// Rate limiting only shows up in the message text.
		if !strings.Contains(err.Error(), "429") {
			break
		}
		time.Sleep(time.Duration(attempt) * bwsLoginBackoff)
	}
	return fmt.Errorf("bitwarden login: %w", err)
}

func projectSecrets(project string, projects []sdk.ProjectResponse, secrets []sdk.SecretResponse) (map[string]string, error) {
	var projectID string
	for _, p := range projects {
		if strings.EqualFold(p.Name, project) {
			projectID = p.ID
			break
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("bitwarden project %q not found", project)
	}

	values := map[string]string{}
	for _, s := range secrets {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			values[s.Key] = s.Value
		}
	}
	return collectSecrets(func(k string) string { return values[k] }), nil
}
