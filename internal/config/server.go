package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServerConfig is the standalone websocket server's CLI/env surface: one
// flat struct of primitive fields, bound to both pflag and viper so every
// setting takes a flag, an env var, or both.
type ServerConfig struct {
	Bind        string
	Port        int
	CatalogDir  string
	TLSCert     string
	TLSKey      string
	Verbose     bool
}

// Validate rejects configurations that would otherwise fail later in a
// more confusing way.
func (c *ServerConfig) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.CatalogDir == "" {
		return errors.New("--catalog-dir is required")
	}
	return nil
}

// Scheme reports the URL scheme this config will serve under, once TLS
// cert/key are both set.
func (c *ServerConfig) Scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

// NewServerCmd builds the cobra command for the standalone server binary:
// a viper instance bound to an env prefix, pflag normalization
// (underscores/dashes interchangeable), and RunE deferring to the caller's
// run function once flags validate.
func NewServerCmd(cfg *ServerConfig, run func(cmd *cobra.Command, args []string, cfg *ServerConfig) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BINGOSINK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "bingosink-server",
		Short:         "Standalone websocket server for bingo-variant games.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, args, cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: BINGOSINK_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: BINGOSINK_PORT)")
	fs.StringVar(&cfg.CatalogDir, "catalog-dir", "./catalogs", "directory of per-game goal catalog JSON files (env: BINGOSINK_CATALOG_DIR)")
	fs.StringVar(&cfg.TLSCert, "tls-cert", "", "path to tls certificate (env: BINGOSINK_TLS_CERT)")
	fs.StringVar(&cfg.TLSKey, "tls-key", "", "path to tls keyfile (env: BINGOSINK_TLS_KEY)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: BINGOSINK_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceUsage = true

	return cmd
}
