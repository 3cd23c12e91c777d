/*
 * Copyright (c) 2022. TxnLab Inc.
 * All Rights reserved.
 */
package misc

import (
	"os"
)

// GetSecret returns key from the environment, which LoadEnvSettings may have populated from .env
// files. RPC URLs carrying API keys are read this way.
func GetSecret(key string) string {
	return os.Getenv(key)
}
