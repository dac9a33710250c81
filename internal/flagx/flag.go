// Package flagx lets several flag sets share one command line: each set
// parses only the arguments it defines and ignores the rest.
package flagx

import (
	"flag"
	"strings"
)

// boolFlag matches flag.Value implementations that take no argument.
type boolFlag interface {
	IsBoolFlag() bool
}

// Filter returns the subset of args (flags and their values) that fs defines.
//
// Supported forms: "-n value", "--n value", "-n=value", "--n=value". Boolean
// flags never consume the following argument; use "-n=false" to switch one off.
func Filter(fs *flag.FlagSet, args []string) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name := strings.TrimLeft(arg, "-")
		name, _, hasValue := strings.Cut(name, "=")

		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue {
			continue
		}
		if bf, ok := f.Value.(boolFlag); ok && bf.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config path given with -c or -config.
// It returns "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Filter(fs, args))

	return path
}
