package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	apiURLVar          = "VITEVITE_API_URL"
	requestTimeoutVar  = "VITEVITE_REQUEST_TIMEOUT"
	pollIntervalVar    = "VITEVITE_POLL_INTERVAL"
	credentialsFileVar = "VITEVITE_CREDENTIALS_FILE"
	sessionFileVar     = "VITEVITE_SESSION_FILE"
	redisAddrVar       = "VITEVITE_REDIS_ADDR"
	redisPasswordVar   = "VITEVITE_REDIS_PASSWORD"
	redisDBVar         = "VITEVITE_REDIS_DB"
	profileVar         = "VITEVITE_PROFILE"
)

type ClientConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
	GetPollInterval() time.Duration
}

type StorageConfig interface {
	GetCredentialsFile() string
	GetSessionFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetProfile() string
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIURL returns the backend base URL, defaulting to the local development backend
func (Client) GetAPIURL() string {
	return GetEnv(apiURLVar, "http://localhost:8000/api")
}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration(requestTimeoutVar, 15*time.Second)
}

// GetPollInterval falls back to the default for zero or negative values
func (Client) GetPollInterval() time.Duration {
	const defaultInterval = 10 * time.Second
	if d := GetEnvDuration(pollIntervalVar, defaultInterval); d > 0 {
		return d
	}
	return defaultInterval
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetCredentialsFile() string {
	if f := os.Getenv(credentialsFileVar); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vitevite", "credentials.json")
	}
	return filepath.Join(home, ".vitevite", "credentials.json")
}

// GetSessionFile holds credentials saved without "remember me". The default
// lives in the temp directory and is keyed by the parent process, so it is
// scoped to the terminal session.
func (Storage) GetSessionFile() string {
	if f := os.Getenv(sessionFileVar); f != "" {
		return f
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("vitevite-%d", os.Getuid()), fmt.Sprintf("session-%d.json", os.Getppid()))
}

// GetRedisAddr returns an empty string when the durable tier should stay on disk
func (Storage) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt(redisDBVar, 0)
}

// GetProfile namespaces stored credentials so several accounts can share one durable tier
func (Storage) GetProfile() string {
	return GetEnv(profileVar, "default")
}
