package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// RepoDataDir is the repo-local data directory holding the project .env.
	RepoDataDir = ".tasks"
	// EnvFileName is the name of the environment variables file.
	EnvFileName = ".env"
)

// LoadDotEnv loads environment variables from <baseDir>/.tasks/.env if it
// exists, which lets a checkout pin TASKENV_ROOT or TASKENV_LOG_LEVEL.
// godotenv.Load does not override variables already set in the process.
// Returns nil if the file doesn't exist.
func LoadDotEnv(baseDir string) error {
	envPath := filepath.Join(baseDir, RepoDataDir, EnvFileName)

	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(envPath)
}

// LoadDotEnvFromCwd loads .tasks/.env from the current working directory.
func LoadDotEnvFromCwd() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	return LoadDotEnv(cwd)
}
