// Package config loads the tool's configuration from a local env file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/uploadhub/printdocs/config/secret"
)

// EnvMongoURI is the variable holding the connection string.
const EnvMongoURI = "MONGODB_URI"

type Config struct {
	MongoURI secret.String
}

// Load reads the env file at path into the process environment and returns
// the connection string found there. Variables already present in the
// environment take precedence, matching dotenv semantics.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("env file not found at %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("could not load env file %s: %w", path, err)
	}

	uri, ok := os.LookupEnv(EnvMongoURI)
	if !ok || uri == "" {
		return Config{}, fmt.Errorf("%s not set in %s", EnvMongoURI, path)
	}

	return Config{MongoURI: secret.String(uri)}, nil
}
