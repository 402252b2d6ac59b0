package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
	ServerConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Client
	Storage
	Server
	Cors
}

// New returns the environment backed configuration. Values from a .env file in
// the working directory are loaded first; variables already set win.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
