package config

import "os"

// GetEnv reads a server setting such as SSH_PORT or SKY_CONFIG. A variable
// that is set but empty is returned as is, so SSH_HOST_KEY= disables the
// host key file.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
