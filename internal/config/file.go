package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadUserConfig merges ~/.qlens/config.yaml into the process
// environment so QDRANT_*/ENV_NAME settings from that file are visible
// to FromEnv. Values from the file take precedence over existing env
// vars.
func LoadUserConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		// Best-effort: if we can't resolve home, just skip file loading.
		return nil
	}

	configPath := filepath.Join(home, ".qlens", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	data = expandEnvVars(data)

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return err
	}

	for key, value := range values {
		if value == "" {
			continue
		}
		_ = os.Setenv(key, value)
	}

	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
