package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/lkarlslund/tagcamps/modules/ui"
	"github.com/lkarlslund/tagcamps/modules/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TAGCAMPS"

var (
	Root = &cobra.Command{
		Use:              "tagcamps",
		Short:            "Separates co-occurring tags into camps by significance weighted label propagation",
		Version:          version.VersionStringShort(),
		SilenceErrors:    true,
		SilenceUsage:     true,
		TraverseChildren: true,
	}
	postrunhooks []func() error

	loglevel = Root.PersistentFlags().String("loglevel", "info", "Console log level")

	logfile      = Root.PersistentFlags().String("logfile", "", "File to log to, {timestamp} is replaced with the current date")
	logfilelevel = Root.PersistentFlags().String("logfilelevel", "info", "Log file log level")
	logzerotime  = Root.PersistentFlags().Bool("logzerotime", false, "Logged timestamps start from zero when program launches")

	// Datapath holds configuration.yaml, the persistence database and profiles
	Datapath = Root.PersistentFlags().String("datapath", "data", "folder to store and read data")

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.Info().Msg(version.VersionString())
			return nil
		},
	}
)

func applyConfig(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if f.Changed || !viper.IsSet(f.Name) {
			return
		}
		var err error
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			err = sv.Replace(viper.GetStringSlice(f.Name))
		} else {
			err = f.Value.Set(viper.GetString(f.Name))
		}
		if err != nil {
			ui.Warn().Msgf("Ignoring configured value for %v: %v", f.Name, err)
		}
	})
}

func bindFlags(cmd *cobra.Command) {
	applyConfig(cmd.PersistentFlags())
	applyConfig(cmd.Flags())
	for _, subCommand := range cmd.Commands() {
		bindFlags(subCommand)
	}
}

func loadConfiguration(cmd *cobra.Command) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	configfilename := filepath.Join(*Datapath, "configuration.yaml")
	viper.SetConfigFile(configfilename)
	if err := viper.ReadInConfig(); err == nil {
		ui.Info().Msgf("Using configuration file: %v", viper.ConfigFileUsed())
	} else {
		ui.Debug().Msgf("No settings loaded from %v: %v", configfilename, err.Error())
	}

	bindFlags(cmd)
}

func init() {
	cobra.OnInitialize(func() {
		loadConfiguration(Root)
	})

	Root.AddCommand(versionCmd)
	Root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ui.Zerotime = *logzerotime

		ll, err := ui.LogLevelString(*loglevel)
		if err != nil {
			ui.Error().Msgf("Invalid log level: %v - use one of: %v", *loglevel, ui.LogLevelStrings())
		} else {
			ui.SetLoglevel(ll)
		}

		if *logfile != "" {
			*logfile = strings.Replace(*logfile, "{timestamp}", time.Now().Format(time.DateOnly), 1)

			ll, err = ui.LogLevelString(*logfilelevel)
			if err != nil {
				ui.Error().Msgf("Invalid log file log level: %v - use one of: %v", *logfilelevel, ui.LogLevelStrings())
			} else if err = ui.SetLogFile(*logfile, ll); err != nil {
				return err
			}
		} else {
			ui.SetLogFile("", ui.LevelInfo) // Tell logger to stop buffering early output
		}

		ui.Debug().Msg(version.VersionString())

		if err := startProfiling(); err != nil {
			return err
		}

		// Ensure the data folder is available
		if _, err := os.Stat(*Datapath); os.IsNotExist(err) {
			err = os.MkdirAll(*Datapath, 0711)
			if err != nil {
				return fmt.Errorf("Could not create data folder %v: %v", *Datapath, err)
			}
		}
		return nil
	}
	Root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		stopProfiling()
		for _, postrunhook := range postrunhooks {
			if err := postrunhook(); err != nil {
				ui.Warn().Msgf("Postrun hook failed: %v", err)
			}
		}
		return nil
	}
}

// AddPostRunHook registers cleanup that runs after a command succeeded
func AddPostRunHook(f func() error) {
	postrunhooks = append(postrunhooks, f)
}

func Run() error {
	// Ctrl-C cancels the running batch between items
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := Root.ExecuteContext(ctx)

	if err == nil {
		ui.Debug().Msgf("Terminating successfully")
	}

	return err
}
