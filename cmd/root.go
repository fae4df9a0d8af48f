package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mark3labs/codex/internal/completion"
	"github.com/mark3labs/codex/internal/config"
	"github.com/mark3labs/codex/internal/prompt"
	"github.com/mark3labs/codex/internal/runner"
	"github.com/mark3labs/codex/internal/ui"
)

const longHelp = `Send a prompt to a chat-completion model and print the answer.

All arguments after the flags are joined with single spaces to form the
prompt. With no arguments, one line is read from the terminal.

Flags are only recognised before the prompt. The first word that is not
a known flag starts the prompt, so "codex -1 + 2" sends "-1 + 2". Use "--"
to send a prompt that begins with a flag name, as in "codex -- -h means help".

The API key is read from the OPENAI_API_KEY environment variable.`

// boundKeys are the flags that viper also reads from config files and
// CODEX_* environment variables.
var boundKeys = []string{
	config.KeyModel,
	config.KeyProviderURL,
	config.KeyTimeout,
	config.KeyOutput,
	config.KeyMarkdown,
	config.KeyDebug,
	config.KeyTLSSkipVerify,
}

// codexBanner returns the title shown at the top of --help.
func codexBanner() string {
	theme := ui.DefaultTheme()
	lines := []string{
		" ▄▀▀ ▄▀▄ █▀▄ ██▀ ▀▄▀",
		" ▀▄▄ ▀▄▀ █▄▀ █▄▄ █ █",
	}

	var result strings.Builder
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(ui.ApplyGradient(line, theme.Primary, theme.Accent))
	}
	return result.String()
}

// GetRootCommand builds the codex command. Each call returns an
// independent command with its own viper instance.
func GetRootCommand(version string) *cobra.Command {
	v := viper.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:          "codex [flags] [--] [prompt...]",
		Short:        "Send a prompt to a chat model and print the answer",
		Long:         codexBanner() + "\n\n" + longHelp,
		Version:      version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		// Flags are split from the prompt by splitArgs so that prompt words
		// starting with "-" are never rejected as unknown flags.
		DisableFlagParsing: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flagArgs, promptArgs := splitArgs(cmd.Flags(), args)
			if err := cmd.Flags().Parse(flagArgs); err != nil {
				return cmd.FlagErrorFunc()(cmd, err)
			}

			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Name(), cmd.Version)
				return err
			}

			// Checked before the config file so a broken file cannot mask it.
			if err := config.CheckCredential(); err != nil {
				return err
			}

			loadedFrom, err := config.ReadConfigFile(v, configFile)
			if err != nil {
				return err
			}
			return runCodex(cmd, v, loadedFrom, promptArgs)
		},
	}

	flags := rootCmd.Flags()

	flags.StringVar(&configFile, "config", "", "config file (default is ./.codex.yml, then $HOME/.codex.yml)")
	flags.StringP(config.KeyModel, "m", config.DefaultModel, "chat model to use")
	flags.String(config.KeyProviderURL, "", "base URL of an OpenAI-compatible API (env OPENAI_BASE_URL)")
	flags.Duration(config.KeyTimeout, 0, "request timeout, e.g. 30s (0 waits indefinitely)")
	flags.StringP(config.KeyOutput, "o", string(config.OutputText), "output format: text, json or yaml")
	flags.Bool(config.KeyMarkdown, false, "render the answer as markdown")
	flags.Bool(config.KeyDebug, false, "enable debug logging")
	flags.Bool(config.KeyTLSSkipVerify, false, "skip TLS certificate verification (insecure)")
	_ = flags.MarkHidden(config.KeyTLSSkipVerify)

	config.SetDefaults(v)
	config.BindEnv(v)
	for _, key := range boundKeys {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	return rootCmd
}

func runCodex(cmd *cobra.Command, v *viper.Viper, configPath string, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := newLogger(stderr, cfg.Debug)
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	width := terminalWidth(stdout)
	opts := ui.RenderOptions{
		Plain:    !isTerminal(stdout),
		Markdown: cfg.Markdown,
		Width:    width,
	}
	if isTerminal(stderr) && !cfg.Debug && cfg.Output == config.OutputText {
		opts.Status = stderr
	}

	r := runner.New(cfg, completion.NewOpenAI(cfg),
		runner.WithReader(promptReader(cmd.InOrStdin(), stderr, width)),
		runner.WithRenderer(ui.NewRenderer(stdout, opts)),
		runner.WithLogger(logger),
	)
	return r.Run(cmd.Context(), args)
}

// promptReader uses the interactive editor when stdin is a terminal and a
// plain line reader otherwise, so piped input keeps working.
func promptReader(in io.Reader, out io.Writer, width int) prompt.Reader {
	if isTerminal(in) {
		return ui.NewTerminalReader(in, out, prompt.DefaultLabel, width)
	}
	return prompt.NewLineReader(in, out, prompt.DefaultLabel)
}

func newLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "codex",
		Level:  log.WarnLevel,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	}
	return logger
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(v any) int {
	f, ok := v.(*os.File)
	if !ok {
		return ui.DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return ui.DefaultWidth
	}
	return min(width, 120)
}
