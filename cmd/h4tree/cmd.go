package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4"
	"github.com/mmf1982/QTnetCDF-sub000/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// options are the configuration options available to h4tree.
var options = []struct {
	name, usage, shorthand string
	defaultVal             interface{}
}{
	{
		name:       "config",
		usage:      "config specifies the configuration file location.",
		defaultVal: "",
	},
	{
		name:       "attrs",
		usage:      "attrs prints the attributes of groups and variables.",
		shorthand:  "a",
		defaultVal: false,
	},
	{
		name:       "values",
		usage:      "values prints the values of every variable.",
		shorthand:  "v",
		defaultVal: false,
	},
	{
		name:       "max-depth",
		usage:      "max-depth bounds how deep groups are printed. Zero means no bound.",
		shorthand:  "d",
		defaultVal: 0,
	},
	{
		name:       "max-values",
		usage:      "max-values bounds how many values are printed per variable.",
		defaultVal: 20,
	},
	{
		name:       "log-level",
		usage:      "log-level sets the logging level: 0 to 3, or fatal, error, warn, info.",
		defaultVal: "warn",
	},
}

// newConfig returns the configuration of one command run.  H4TREE_MAX_DEPTH
// sets --max-depth.
func newConfig() *viper.Viper {
	cfg := viper.New()
	cfg.SetEnvPrefix("H4TREE")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()
	return cfg
}

// addOptions declares every option on set and binds it to cfg.
func addOptions(cfg *viper.Viper, set *pflag.FlagSet) {
	for _, option := range options {
		switch v := option.defaultVal.(type) {
		case string:
			set.StringP(option.name, option.shorthand, v, option.usage)
		case bool:
			set.BoolP(option.name, option.shorthand, v, option.usage)
		case int:
			set.IntP(option.name, option.shorthand, v, option.usage)
		default:
			panic("invalid argument type")
		}
		if err := cfg.BindPFlag(option.name, set.Lookup(option.name)); err != nil {
			panic(fmt.Sprintf("binding option %q: %v", option.name, err))
		}
	}
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig(cfg *viper.Viper) error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("h4tree: problem reading configuration file: %v", err)
		}
	}
	level, err := logLevel(cfg.GetString("log-level"))
	if err != nil {
		return err
	}
	hdf4.SetLogLevel(level)
	return nil
}

func logLevel(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if l, ok := internal.ParseLevel(s); ok {
		return int(l), nil
	}
	return 0, fmt.Errorf("h4tree: unknown log level %q", s)
}

// newRoot returns the main command with its own flags and configuration.
func newRoot() *cobra.Command {
	cfg := newConfig()
	root := &cobra.Command{
		Use:   "h4tree FILE...",
		Short: "Print the logical tree of HDF4 files.",
		Long: `h4tree opens HDF4 files and prints their groups and variables the way a
netCDF-style reader sees them: the Vgroups and Vdatas HDF4 uses to store
dimensions, attributes and data set wrappers are hidden.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'H4TREE_var' where 'var' is
the name of the flag with dashes replaced by underscores.`,
		Args:              cobra.MinimumNArgs(1),
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig(cfg) },
		RunE: func(cmd *cobra.Command, args []string) error {
			p := printer{
				w:         cmd.OutOrStdout(),
				attrs:     cfg.GetBool("attrs"),
				values:    cfg.GetBool("values"),
				maxDepth:  cfg.GetInt("max-depth"),
				maxValues: cfg.GetInt("max-values"),
			}
			for _, fname := range args {
				if err := printFile(p, fname); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addOptions(cfg, root.PersistentFlags())
	return root
}

func printFile(p printer, fname string) error {
	t, err := hdf4.Open(fname)
	if err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	defer hdf4.Close(t)
	fmt.Fprintf(p.w, "=== %s ===\n", fname)
	return p.group(t.Root, "", 0)
}
