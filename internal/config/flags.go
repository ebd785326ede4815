package config

import (
	"flag"
)

// parses CLI flags for the server binary
func ParseServerFlags(args []string) Flags {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	envFile := fs.String("env-file", ".env", "path to an optional .env file")
	port := fs.String("port", "", "listen port (overrides PORT)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{EnvFile: *envFile, Port: *port}
}

// returns default flags for the server binary
func DefaultServerFlags() Flags {
	return Flags{EnvFile: ".env"}
}
