package cmd

import (
	"strings"

	"github.com/spf13/pflag"
)

// splitArgs separates the leading flags in args from the prompt words.
// Flags are recognised only at the front and only when fs defines them; the
// first token that is not a known flag (or a flag value) starts the prompt,
// so "-1 + 2" is prompt text. A literal "--" ends the flags and is dropped.
func splitArgs(fs *pflag.FlagSet, args []string) (flagArgs, promptArgs []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args[:i], args[i+1:]
		}

		f, inlineValue := lookupFlag(fs, arg)
		if f == nil {
			return args[:i], args[i:]
		}
		if f.NoOptDefVal == "" && !inlineValue {
			// Value is the next token.
			i++
		}
	}
	return args, nil
}

// lookupFlag resolves a single token to the flag it names, if any.
// inlineValue reports whether the value is attached ("--model=x", "-mx").
func lookupFlag(fs *pflag.FlagSet, arg string) (f *pflag.Flag, inlineValue bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return nil, false
	}

	if name, ok := strings.CutPrefix(arg, "--"); ok {
		name, _, inlineValue = strings.Cut(name, "=")
		if name == "" {
			return nil, false
		}
		return fs.Lookup(name), inlineValue
	}

	f = fs.ShorthandLookup(arg[1:2])
	if f == nil {
		return nil, false
	}
	if len(arg) > 2 {
		// "-mgpt-4" and "-m=gpt-4" carry a value; a boolean shorthand with
		// trailing characters ("-hello") is a word, not a flag.
		if f.NoOptDefVal != "" {
			return nil, false
		}
		return f, true
	}
	return f, false
}
