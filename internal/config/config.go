package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// APIKeyEnv is the only place the credential is read from.
	APIKeyEnv = "OPENAI_API_KEY"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultBanner is printed before the completion text.
	DefaultBanner = "\n🧠 Output:\n"

	envPrefix = "CODEX"
)

// Config keys, shared by flag bindings, config files and CODEX_* variables.
const (
	KeyModel         = "model"
	KeyProviderURL   = "provider-url"
	KeyOrganization  = "organization"
	KeyTimeout       = "timeout"
	KeyBanner        = "banner"
	KeyOutput        = "output"
	KeyMarkdown      = "markdown"
	KeyDebug         = "debug"
	KeyTLSSkipVerify = "tls-skip-verify"
)

// ErrMissingCredential is returned when OPENAI_API_KEY is unset or empty.
var ErrMissingCredential = errors.New("please set your " + APIKeyEnv + " environment variable")

// OutputFormat selects how a completion result is printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates s as an OutputFormat. Matching is
// case-insensitive; the empty string means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON, OutputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (want text, json or yaml)", s)
	}
}

// Config is the resolved configuration for a single run. It is built once
// at startup and passed by value; nothing mutates it afterwards.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	Organization  string
	Timeout       time.Duration
	Banner        string
	Output        OutputFormat
	Markdown      bool
	Debug         bool
	TLSSkipVerify bool
}

// RequireCredential returns ErrMissingCredential if no API key is present.
func (c Config) RequireCredential() error {
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// CheckCredential returns ErrMissingCredential if OPENAI_API_KEY is unset
// or empty in the process environment.
func CheckCredential() error {
	if os.Getenv(APIKeyEnv) == "" {
		return ErrMissingCredential
	}
	return nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyBanner, DefaultBanner)
	v.SetDefault(KeyOutput, string(OutputText))
	v.SetDefault(KeyTimeout, time.Duration(0))
}

// BindEnv wires CODEX_* variables for every key, plus the conventional
// OpenAI variables for the base URL and organization.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyProviderURL, "CODEX_PROVIDER_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv(KeyOrganization, "CODEX_ORGANIZATION", "OPENAI_ORG_ID")
}

// Load resolves a Config from v. The credential always comes from the
// process environment, never from v, so it cannot leak into config files.
// A missing credential is not an error here; see RequireCredential.
func Load(v *viper.Viper) (Config, error) {
	out, err := ParseOutputFormat(v.GetString(KeyOutput))
	if err != nil {
		return Config{}, err
	}

	timeout := v.GetDuration(KeyTimeout)
	if timeout < 0 {
		return Config{}, fmt.Errorf("invalid timeout %s: must not be negative", timeout)
	}

	model := strings.TrimSpace(v.GetString(KeyModel))
	if model == "" {
		model = DefaultModel
	}

	return Config{
		APIKey:        os.Getenv(APIKeyEnv),
		Model:         model,
		BaseURL:       strings.TrimRight(v.GetString(KeyProviderURL), "/"),
		Organization:  v.GetString(KeyOrganization),
		Timeout:       timeout,
		Banner:        v.GetString(KeyBanner),
		Output:        out,
		Markdown:      v.GetBool(KeyMarkdown),
		Debug:         v.GetBool(KeyDebug),
		TLSSkipVerify: v.GetBool(KeyTLSSkipVerify),
	}, nil
}
