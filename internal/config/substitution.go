package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${env://VAR} and ${env://VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// splitDefault separates "VAR:-default" into its name and default value.
func splitDefault(ref string) (name, def string, hasDefault bool) {
	name, def, hasDefault = strings.Cut(ref, ":-")
	return name, def, hasDefault
}

// EnvSubstituter expands ${env://VAR} references in config file contents
// before viper parses them.
type EnvSubstituter struct {
	// Getenv looks up a variable. Defaults to os.Getenv.
	Getenv func(string) string
}

func (e *EnvSubstituter) getenv(name string) string {
	if e.Getenv != nil {
		return e.Getenv(name)
	}
	return os.Getenv(name)
}

// SubstituteEnvVars replaces every ${env://VAR} and ${env://VAR:-default}
// in content. An unset or empty variable falls back to its default; a
// reference without a default to an unset variable is an error, and all
// such references are reported together.
func (e *EnvSubstituter) SubstituteEnvVars(content string) (string, error) {
	var missing []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		ref := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${env://")
		name, def, hasDefault := splitDefault(ref)

		if v := e.getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}

		missing = append(missing, fmt.Sprintf("required environment variable %s not set in %s", name, match))
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable substitution failed: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// HasEnvVars reports whether content contains any ${env://...} reference.
func HasEnvVars(content string) bool {
	return envVarPattern.MatchString(content)
}
