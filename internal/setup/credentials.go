package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type credentialsFile struct {
	ClaudeAiOauth *struct {
		AccessToken string `json:"accessToken"`
	} `json:"claudeAiOauth"`
}

// hasAccessToken reports whether the CLI's credentials file holds a
// non-empty OAuth access token. A missing file is (false, nil).
func hasAccessToken(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read credentials: %w", err)
	}

	var creds credentialsFile
	if err := json.Unmarshal(b, &creds); err != nil {
		return false, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.ClaudeAiOauth == nil {
		return false, nil
	}
	return strings.TrimSpace(creds.ClaudeAiOauth.AccessToken) != "", nil
}
