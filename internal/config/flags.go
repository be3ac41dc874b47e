package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/contactkeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags listed in the package doc. Only
// those flags are picked out of args.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-s", "-f", "-d", "-r", "-k", "-t", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Store, "s", cfg.Store, "state store backend")
	fs.StringVar(&cfg.StatePath, "f", cfg.StatePath, "path of the state file")
	fs.StringVar(&cfg.DSN, "d", cfg.DSN, "database DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.StateKey, "k", cfg.StateKey, "state document key")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "lookup request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	return fs.Parse(args)
}
