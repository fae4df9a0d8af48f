package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// configName is the base name searched for in the working directory and
// then $HOME, with any extension viper understands (.yml, .yaml, .json).
const configName = ".codex"

// ReadConfigFile loads configuration into v. When path is empty the
// standard locations are searched and a missing file is not an error.
// It returns the path that was loaded, or "" if none was found.
func ReadConfigFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		return path, LoadWithEnvSubstitution(v, path)
	}

	found, err := findConfigFile()
	if err != nil || found == "" {
		return "", err
	}
	if err := LoadWithEnvSubstitution(v, found); err != nil {
		return "", fmt.Errorf("error reading config file '%s': %w", found, err)
	}
	return found, nil
}

// findConfigFile returns the first config file in the current directory or
// the home directory. The current directory wins.
func findConfigFile() (string, error) {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	for _, dir := range dirs {
		for _, ext := range viper.SupportedExts {
			p := filepath.Join(dir, configName+"."+ext)
			info, err := os.Stat(p)
			if err == nil && !info.IsDir() {
				return p, nil
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", p, err)
			}
		}
	}
	return "", nil
}

// LoadWithEnvSubstitution reads the file at path, expands ${env://VAR}
// references and merges the result into v.
func LoadWithEnvSubstitution(v *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	processed := string(raw)
	if HasEnvVars(processed) {
		substituter := &EnvSubstituter{}
		processed, err = substituter.SubstituteEnvVars(processed)
		if err != nil {
			return fmt.Errorf("config env substitution failed: %w", err)
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !slices.Contains(viper.SupportedExts, ext) {
		ext = "yaml"
	}

	v.SetConfigType(ext)
	return v.ReadConfig(strings.NewReader(processed))
}
