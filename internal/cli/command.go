// Package cli implements the catalogctl command line: a local HTTP server
// and direct access to the catalog operations.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pricofy/product-catalog/internal/app"
	"github.com/pricofy/product-catalog/internal/config"
	"github.com/pricofy/product-catalog/internal/obs"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Product catalog operator tool",
		Long: `catalogctl runs the product catalog locally and operates on it directly.

Settings come from flags, a YAML config file, a .env file and the
environment, in that order of precedence.

Examples:
  catalogctl serve --store sqlite                 # Local API on :8080
  catalogctl query books --filter guide           # List matching records
  catalogctl update books b1 --price 12.00        # Change one field
  catalogctl translate books b1 --language es     # Cached translation`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, flags)
		},
	}

	setupFlags(rootCmd, flags)
	bindFlagsToViper(rootCmd.PersistentFlags(), v)

	rootCmd.AddCommand(
		newServeCommand(v, flags),
		newQueryCommand(v, flags),
		newGetCommand(v, flags),
		newCreateCommand(v, flags),
		newUpdateCommand(v, flags),
		newTranslateCommand(v, flags),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (YAML)")
	pf.StringVar(&flags.EnvFile, "env-file", flags.EnvFile, "dotenv file loaded before reading the environment")
	pf.StringVar(&flags.Store, "store", "", "store backend: dynamodb, sqlite or memory")
	pf.StringVar(&flags.TableName, "table", "", "DynamoDB table name")
	pf.StringVar(&flags.SQLitePath, "sqlite-path", "", "SQLite database file")
	pf.StringVar(&flags.Translator, "translator", "", "translation backend: amazon, openai or lambda")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
}

func bindFlagsToViper(set *pflag.FlagSet, v *viper.Viper) {
	v.BindPFlag(config.KeyStore, set.Lookup("store"))
	v.BindPFlag(config.KeyTableName, set.Lookup("table"))
	v.BindPFlag(config.KeySQLitePath, set.Lookup("sqlite-path"))
	v.BindPFlag(config.KeyTranslator, set.Lookup("translator"))
	v.BindPFlag(config.KeyLogLevel, set.Lookup("log-level"))
}

// initConfig loads the dotenv and config files into v. A missing default
// .env file is not an error.
func initConfig(v *viper.Viper, flags *Flags) error {
	if flags.EnvFile != "" {
		if err := godotenv.Load(flags.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", flags.EnvFile, err)
		}
	}

	if flags.CfgFile != "" {
		v.SetConfigFile(flags.CfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}

	// Command output goes to stdout; logs go to stderr.
	obs.InitLoggerTo(os.Stderr, v.GetString(config.KeyLogLevel))
	return nil
}

func newApp(ctx context.Context, v *viper.Viper) (*app.App, error) {
	return app.New(ctx, config.FromViper(v))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
