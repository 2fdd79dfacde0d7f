package main

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var negativeInt = regexp.MustCompile(`^-\d+$`)

// parseFlags parses cmd's flags out of args and returns the positional
// arguments in order. Negative integers such as -2 are positional, and
// everything after -- is positional. Commands using it set
// DisableFlagParsing so cobra passes args through untouched.
func parseFlags(cmd *cobra.Command, args []string) ([]string, error) {
	fs := cmd.Flags()

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case a == "-" || !strings.HasPrefix(a, "-") || negativeInt.MatchString(a):
			positional = append(positional, a)
		default:
			flags = append(flags, a)
			if strings.Contains(a, "=") {
				continue
			}
			if f := lookupFlag(fs, a); f != nil && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		}
	}

	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	return positional, nil
}

// lookupFlag finds the flag named by a --long or -s argument. Shorthands
// with an attached value (-ojson) return nil; they take no separate value.
func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		return fs.Lookup(name)
	}
	short := strings.TrimPrefix(arg, "-")
	if len(short) != 1 {
		return nil
	}
	return fs.ShorthandLookup(short)
}

// helpRequested reports whether --help was among the parsed flags.
func helpRequested(cmd *cobra.Command) bool {
	help, _ := cmd.Flags().GetBool("help")
	return help
}
