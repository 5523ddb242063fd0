package store

import (
	"encoding/json"
	"os"

	"tickethub-cli/model"
)

const authFile = "auth.json"

// AuthRecord is the persisted login state.
type AuthRecord struct {
	Token string      `json:"auth_token"`
	Role  model.Role  `json:"auth_role"`
	User  *model.User `json:"auth_user,omitempty"`
}

// LoadAuth returns the persisted login. No file means logged out.
func LoadAuth() (AuthRecord, error) {
	path, err := configPath(authFile)
	if err != nil {
		return AuthRecord{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AuthRecord{}, nil
		}
		return AuthRecord{}, err
	}
	var record AuthRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return AuthRecord{}, err
	}
	return record, nil
}

// SaveAuth persists the login readable only by the current user.
func SaveAuth(record AuthRecord) error {
	path, err := configPath(authFile)
	if err != nil {
		return err
	}
	if err := writeJSON(path, record, 0o600); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

func ClearAuth() error {
	path, err := configPath(authFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
