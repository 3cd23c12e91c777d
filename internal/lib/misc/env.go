/*
 * Copyright (c) 2022. TxnLab Inc.
 * All Rights reserved.
 */

package misc

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// LoadEnvSettings loads .env.local and then .env from the working directory. Values already in the
// environment win, so these only fill in defaults.
func LoadEnvSettings(logger *slog.Logger) {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			Warnf(logger, "unable to load env file:%s, error:%v", name, err)
		}
	}
}

// LoadNamedEnvFile loads an explicitly requested env file, where a missing file is an error.
func LoadNamedEnvFile(logger *slog.Logger, envFile string) error {
	Debugf(logger, "loading env file:%s", envFile)
	return godotenv.Load(envFile)
}
