package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Environment variables read by the CLI. Flags take precedence.
const (
	EnvDatabase    = "FPSTORE_DB"
	EnvDriver      = "FPSTORE_DRIVER"
	EnvWritePolicy = "FPSTORE_WRITE_POLICY"
)

// DefaultDatabase is used when neither --db nor FPSTORE_DB is set.
const DefaultDatabase = "fpstore.db"

// DefaultEnvFile is loaded when present; --env-file names another one.
const DefaultEnvFile = ".env"

// loadEnvFile loads KEY=value pairs from path. Variables already set in the
// process environment win. A missing file is only an error when required.
func loadEnvFile(path string, required bool) error {
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// resolveConfig fills opts from the environment for every flag the user did
// not set explicitly.
func resolveConfig(cmd *cobra.Command, opts *RootOptions) error {
	envFile := opts.EnvFile
	required := cmd.Flags().Changed("env-file")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := loadEnvFile(envFile, required); err != nil {
		return err
	}

	fromEnv := func(flag, env string, dst *string) {
		if cmd.Flags().Changed(flag) {
			return
		}
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
	fromEnv("db", EnvDatabase, &opts.Database)
	fromEnv("driver", EnvDriver, &opts.Driver)
	fromEnv("write-policy", EnvWritePolicy, &opts.WritePolicy)

	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	return nil
}
