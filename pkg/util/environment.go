package util

import (
	"os"
	"strings"
)

const EnvironmentPrefix = "BUSBOARD_"

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetSetting returns the BUSBOARD_ prefixed environment value for name, or fallback when unset or blank.
func GetSetting(env map[string]string, name string, fallback string) string {
	if value := strings.TrimSpace(env[EnvironmentPrefix+name]); value != "" {
		return value
	}

	return fallback
}
