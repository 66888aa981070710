package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tos-network/tvmabi"
)

const defaultProfile = "tvmabi"

// app is the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop().Sugar()}
	a.v.SetDefault("codegen.package", "abi")

	rootCmd := &cobra.Command{
		Use:           "tvmabi",
		Short:         "parse contract interface signatures and generate Go structs",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.initLogger(); err != nil {
				return err
			}
			return a.readInConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "profile name or path of a yaml profile")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	mustBind(a.v, "config", rootCmd.PersistentFlags().Lookup("config"))
	mustBind(a.v, "verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(
		a.parseCmd(),
		a.idCmd(),
		a.genCmd(),
		a.sigsCmd(),
		a.verifyCmd(),
		a.replCmd(),
	)
	rootCmd.InitDefaultHelpCmd()
	return rootCmd
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding %s: %v", key, err))
	}
}

func (a *app) initLogger() error {
	if !a.v.GetBool("verbose") {
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	a.log = l.Sugar()
	return nil
}

// readInConfig loads the yaml profile. A missing default profile is not an
// error; a missing profile named with --config is.
func (a *app) readInConfig(cmd *cobra.Command) error {
	name := a.v.GetString("config")
	explicit := name != ""
	if !explicit {
		name = defaultProfile
	}
	path := name
	if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
		path = "./" + name + ".yaml"
	}
	a.v.SetConfigType("yaml")
	a.v.SetConfigFile(path)
	a.v.SetEnvPrefix("TVMABI")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			a.log.Debugw("no profile found", "path", path)
			return nil
		}
		return fmt.Errorf("reading profile %s: %w", path, err)
	}
	a.log.Debugw("using profile", "path", a.v.ConfigFileUsed(), "command", cmd.Name())
	return nil
}

// options collects generator options from the profile, the environment
// and command flags.
func (a *app) options() (tvmabi.Options, error) {
	opts := tvmabi.DefaultOptions()
	opts.Package = a.v.GetString("codegen.package")
	opts.Descriptors = a.v.GetBool("codegen.descriptors")
	if err := a.v.UnmarshalKey("codegen.overrides", &opts.Overrides); err != nil {
		return tvmabi.Options{}, fmt.Errorf("codegen.overrides: %w", err)
	}
	return opts, nil
}

// readInput returns the text named by --file, or the joined arguments.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return strings.Join(args, " "), "", nil
	}
	if len(args) > 0 {
		return "", "", fmt.Errorf("--file cannot be combined with a signature argument")
	}
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", "", err
	}
	return string(data), file, nil
}
