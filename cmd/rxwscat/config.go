package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"
)

type config struct {
	URL          string            `mapstructure:"url"`
	Headers      map[string]string `mapstructure:"headers"`
	PingInterval time.Duration     `mapstructure:"ping_interval"`
	DialTimeout  time.Duration     `mapstructure:"dial_timeout"`
	CloseTimeout time.Duration     `mapstructure:"close_timeout"`
	Trim         bool              `mapstructure:"trim"`
	Normalize    string            `mapstructure:"normalize"`
	Debug        bool              `mapstructure:"debug"`
}

var normForms = map[string]norm.Form{
	"nfc":  norm.NFC,
	"nfd":  norm.NFD,
	"nfkc": norm.NFKC,
	"nfkd": norm.NFKD,
}

// loadConfig merges, by increasing precedence, defaults, an optional config file, RXWSCAT_*
// environment variables and command line flags. The first positional argument is the url.
func loadConfig(args []string) (config, error) {
	v := viper.New()
	v.SetDefault("url", "")
	v.SetDefault("ping_interval", 30*time.Second)
	v.SetDefault("dial_timeout", 10*time.Second)
	v.SetDefault("close_timeout", 5*time.Second)

	v.SetEnvPrefix("RXWSCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("rxwscat", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.Duration("ping_interval", 30*time.Second, "interval between keep-alive pings, 0 disables them")
	fs.Duration("dial_timeout", 10*time.Second, "handshake timeout")
	fs.Bool("trim", false, "trim whitespace around inbound text messages")
	fs.String("normalize", "", "unicode normalization form for inbound text: nfc, nfd, nfkc or nfkd")
	fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return config{}, err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("cannot read config %s: %w", file, err)
		}
	}

	if fs.NArg() > 0 {
		v.Set("url", fs.Arg(0))
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, err
	}

	if cfg.URL == "" {
		return config{}, fmt.Errorf("usage: rxwscat [flags] <url>")
	}
	if _, ok := normForms[cfg.Normalize]; cfg.Normalize != "" && !ok {
		return config{}, fmt.Errorf("unknown normalization form %q", cfg.Normalize)
	}

	return cfg, nil
}
