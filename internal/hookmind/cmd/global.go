package cmd

import (
	"strings"

	"github.com/spf13/pflag"
)

const flagConfig = "config"

var globalConfigFile string

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&globalConfigFile,
		flagConfig,
		"c",
		globalConfigFile,
		"Read configuration from the specified file. Supports JSON and YAML.")
}

// lookupConfigFlag finds --config in args before cobra parses them, so the
// file can seed option defaults and plugin commands.
func lookupConfigFlag(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return ""
		case arg == "--"+flagConfig || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--"+flagConfig+"="):
			return strings.TrimPrefix(arg, "--"+flagConfig+"=")
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		}
	}
	return ""
}
