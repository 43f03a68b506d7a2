package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/config"
)

// options holds the flags shared by the commands. Each command accepts the
// subset it documents.
type options struct {
	configPath string
	logFile    string
	addr       string
	json       bool
	args       []string
}

// parseArgs reads flags from args. Flags in valued take the next argument;
// flags in switches take none. Anything else not starting with "-" is
// positional.
func parseArgs(args []string, valued, switches []string) (options, error) {
	var opts options
	has := func(set []string, name string) bool {
		for _, s := range set {
			if s == name {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, inline := strings.Cut(arg, "=")
		switch {
		case has(valued, name):
			if !inline {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			switch name {
			case "-c", "--config":
				opts.configPath = value
			case "--log-file":
				opts.logFile = value
			case "--addr":
				opts.addr = value
			}
		case has(switches, arg):
			if arg == "--json" {
				opts.json = true
			}
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag %q", arg)
		default:
			opts.args = append(opts.args, arg)
		}
	}
	return opts, nil
}

// resolveConfig loads path, or the nearest scrollwatch.yaml above the
// working directory, or the defaults. It returns the file used, empty for
// the defaults.
func resolveConfig(path string) (*config.Config, string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get working directory: %w", err)
		}
		found, err := config.FindConfig(wd)
		if err != nil {
			return config.Default(), "", nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
