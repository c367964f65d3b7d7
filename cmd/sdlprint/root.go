package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Protocol-Lattice/sdlprint/printer"
)

// app carries the state shared by every command of one run.
type app struct {
	v      *viper.Viper
	log    *logrus.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	log := logrus.New()
	log.SetOutput(errOut)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &app{v: viper.New(), log: log, in: in, out: out, errOut: errOut}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sdlprint",
		Short:         "Canonical GraphQL schema printer",
		Long:          "sdlprint parses GraphQL schema definition language and prints it back in one canonical layout.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: .sdlprint.yaml in the working or home directory)")
	flags.BoolP("verbose", "v", false, "Verbose output (alias --debug)")
	flags.BoolP("quiet", "q", false, "Only report errors (alias --silent)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("quiet", flags.Lookup("quiet"))

	rootCmd.AddCommand(a.printCmd(), a.loginCmd(), a.serveCmd())
	rootCmd.SetGlobalNormalizationFunc(flagAliases)
	return rootCmd
}

// flagAliases maps the alternative spellings of the verbosity flags.
func flagAliases(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "debug":
		name = "verbose"
	case "silent":
		name = "quiet"
	}
	return pflag.NormalizedName(name)
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix("SDLPRINT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	a.v.SetDefault("print.max_width", printer.DefaultMaxWidth)
	a.v.SetDefault("print.inline_limit", printer.DefaultInlineLimit)
	a.v.SetDefault("serve.addr", ":8080")
	a.v.SetDefault("serve.cache_size", 256)
	a.v.SetDefault("serve.max_body", 8<<20)

	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName(".sdlprint")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	verbose, quiet := a.v.GetBool("verbose"), a.v.GetBool("quiet")
	switch {
	case verbose && quiet:
		return errors.New("verbose and quiet are mutually exclusive")
	case verbose:
		a.log.SetLevel(logrus.DebugLevel)
	case quiet:
		a.log.SetLevel(logrus.ErrorLevel)
	default:
		a.log.SetLevel(logrus.InfoLevel)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.WithField("file", used).Debug("loaded config")
	}
	return nil
}

func (a *app) printOptions() printer.Options {
	return printer.Options{
		MaxWidth:    a.v.GetInt("print.max_width"),
		InlineLimit: a.v.GetInt("print.inline_limit"),
	}
}
