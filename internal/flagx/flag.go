// Package flagx helps components share os.Args without stepping on each
// other: every config layer parses only the flags it declares and leaves
// the rest alone.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps the arguments belonging to the given flag names and
// drops everything else. Both spellings are recognized: "-f value" as two
// arguments and "-f=value" (or "--flag=value") as one. A flag's detached
// value travels with it; an argument starting with '-' is never consumed
// as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, name := range allowedFlags {
		allowed[name] = struct{}{}
	}

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, _, attached := strings.Cut(args[i], "=")
		if !strings.HasPrefix(name, "-") {
			continue
		}
		if _, ok := allowed[name]; !ok {
			continue
		}
		kept = append(kept, args[i])
		if attached {
			continue
		}
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			kept = append(kept, args[next])
			i = next
		}
	}
	return kept
}

// ConfigFileArg returns the config file path given via -c or -config, or
// "" when neither flag is present. Unrelated flags are ignored, so any
// component can call this before defining its own flag set.
func ConfigFileArg() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	var path string
	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(args)

	return path
}
