// internal/auth/session.go
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "rankpull-cli"
	// FallbackDir is the directory for file-based session storage (when keyring fails)
	FallbackDir = ".rankpull/sessions"
)

var (
	storageProbe sync.Once
	fileStorage  bool
)

// useFileBasedStorage reports whether sessions go to plain files instead of
// the OS keyring. Headless environments (CI, containers) rarely have a
// keyring daemon, so the first call probes once and caches the answer.
func useFileBasedStorage() bool {
	storageProbe.Do(func() {
		if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
			fileStorage = true
			return
		}

		testKey := "_test_keyring_access_"
		if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
			fileStorage = true
			return
		}
		_ = keyring.Delete(KeyringService, testKey)
	})
	return fileStorage
}

// getSessionDir returns the session storage directory
func getSessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

// getSessionPath returns the file path for a session
func getSessionPath(name string) (string, error) {
	dir, err := getSessionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// SessionData represents a stored authentication session captured from a
// logged-in browser. The cookies feed both the static HTTP cookie jar and
// the headless browser on later fetches.
type SessionData struct {
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Cookies   []Cookie          `json:"cookies"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// SaveSession saves a session securely to the OS keyring or file
func SaveSession(session *SessionData) error {
	if session.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if useFileBasedStorage() {
		path, err := getSessionPath(session.Name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	return nil
}

// LoadSession loads a session from the OS keyring or file. Expired sessions
// are rejected so a stale login surfaces before any page is fetched.
func LoadSession(name string) (*SessionData, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	var data string

	if useFileBasedStorage() {
		path, err := getSessionPath(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get session path: %w", err)
		}
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		data = string(fileData)
	} else {
		stored, err := keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
		data = stored
	}

	var session SessionData
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}

	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session %q expired at %s", name, session.ExpiresAt.Format(time.RFC3339))
	}

	return &session, nil
}

// DeleteSession removes a session from the OS keyring or file
func DeleteSession(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if useFileBasedStorage() {
		path, err := getSessionPath(name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// ListSessions returns a list of all stored session names
func ListSessions() ([]string, error) {
	if useFileBasedStorage() {
		dir, err := getSessionDir()
		if err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}

		var sessions []string
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
				sessions = append(sessions, strings.TrimSuffix(entry.Name(), ".json"))
			}
		}
		return sessions, nil
	}

	// The keyring has no listing API, so session names live in a manifest key.
	manifestData, err := keyring.Get(KeyringService, "_manifest")
	if err != nil {
		return []string{}, nil
	}

	var sessions []string
	if err := json.Unmarshal([]byte(manifestData), &sessions); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}

	return sessions, nil
}

// updateManifest adds or removes a session from the manifest
func updateManifest(sessionName string, add bool) error {
	sessions, _ := ListSessions()

	if add {
		found := false
		for _, s := range sessions {
			if s == sessionName {
				found = true
				break
			}
		}
		if !found {
			sessions = append(sessions, sessionName)
		}
	} else {
		kept := []string{}
		for _, s := range sessions {
			if s != sessionName {
				kept = append(kept, s)
			}
		}
		sessions = kept
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}

	return keyring.Set(KeyringService, "_manifest", string(data))
}

// SaveSessionWithManifest saves a session and updates the manifest
func SaveSessionWithManifest(session *SessionData) error {
	if err := SaveSession(session); err != nil {
		return err
	}

	// File-based storage lists the directory instead of a manifest.
	if useFileBasedStorage() {
		return nil
	}

	return updateManifest(session.Name, true)
}

// DeleteSessionWithManifest deletes a session and updates the manifest
func DeleteSessionWithManifest(name string) error {
	if err := DeleteSession(name); err != nil {
		return err
	}

	if useFileBasedStorage() {
		return nil
	}

	return updateManifest(name, false)
}
