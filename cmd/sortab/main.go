// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// sortab drives a sorted table through a cursor from the command line.
//
// Usage:
//
//	sortab run [script]              # run a cursor script, stdin when omitted
//	sortab run --init 10 --append    # preload 10 records, append-mode cursor
//	sortab browse [script]           # interactive viewer over the table
//	sortab stats [script]            # run a script, print Prometheus metrics
//
// A script holds one operation per line:
//
//	first | last | next | prev | get | remove | reset | dump | compact
//	search KEY
//	insert [KEY] VALUE
//	update [KEY] VALUE
//
// Flags may also be set as SORTAB_* environment variables, read from the
// process environment or from .env and .env.local.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab/codec"
	"github.com/dacapoday/sortab/cursor"
	"github.com/dacapoday/sortab/table"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:               "sortab",
		Short:             "sorted table with a positioned cursor",
		SilenceUsage:      true,
		PersistentPreRunE: bindFlags,
	}
	runCmd = &cobra.Command{
		Use:   "run [script]",
		Short: "Run a cursor script and print each outcome",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(args)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.run(cmd.OutOrStdout())
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats [script]",
		Short: "Run a cursor script and print the table metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(args)
			if err != nil {
				return err
			}
			defer s.Close()
			if err = s.run(io.Discard); err != nil {
				return err
			}
			s.tbl.Metrics().WritePrometheus(cmd.OutOrStdout())
			return nil
		},
	}
	browseCmd = &cobra.Command{
		Use:   "browse [script]",
		Short: "Browse the table after running a script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && viper.GetInt("init") == 0 {
				return errors.New("browse needs a script or --init")
			}
			s, err := open(args)
			if err != nil {
				return err
			}
			defer s.Close()
			if err = s.run(io.Discard); err != nil {
				return err
			}
			return browse(s.tbl)
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sortab",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sortab v%s\n", version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(runCmd, statsCmd, browseCmd, versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("key-format", "S", "key format: S (string) or r (record number)")
	flags.String("value-format", "S", "value format: S (string) or <n>t (n fixed bytes)")
	flags.Bool("append", false, "open the cursor in append mode")
	flags.Int("init", 0, "preload this many records before the script")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
}

// initConfig loads env files and environment variables into viper.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("sortab")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// config is the resolved command-line configuration.
type config struct {
	format   codec.Format
	mode     cursor.Mode
	init     int
	logLevel string
}

func loadConfig() (conf config, err error) {
	conf.format, err = codec.ParseFormat(fmt.Sprintf("key_format=%s,value_format=%s",
		viper.GetString("key-format"), viper.GetString("value-format")))
	if err != nil {
		return
	}
	if viper.GetBool("append") {
		conf.mode |= cursor.Append
	}
	conf.init = viper.GetInt("init")
	if conf.init < 0 {
		err = errors.Newf("--init %d is negative", conf.init)
		return
	}
	conf.logLevel = viper.GetString("log-level")
	return
}

func newLogger(level string) *log.Logger {
	return &log.Logger{
		Level: log.ParseLevel(level),
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: term.IsTerminal(int(os.Stderr.Fd())),
		},
	}
}

// session is a table loaded with a parsed script.
type session struct {
	conf config
	tbl  *table.Table
	cmds []command
}

func open(args []string) (*session, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var cmds []command
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "open script")
		}
		defer f.Close()
		cmds, err = parseScript(f)
		if err != nil {
			return nil, errors.Wrap(err, args[0])
		}
	} else if !term.IsTerminal(int(os.Stdin.Fd())) {
		if cmds, err = parseScript(os.Stdin); err != nil {
			return nil, errors.Wrap(err, "stdin")
		}
	}

	logger := newLogger(conf.logLevel)
	tbl, err := table.New("sortab", conf.format, table.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err = preload(tbl, conf.init); err != nil {
		tbl.Close()
		return nil, err
	}
	logger.Info().Str("format", conf.format.String()).Int("preloaded", conf.init).Int("ops", len(cmds)).Msg("session ready")
	return &session{conf: conf, tbl: tbl, cmds: cmds}, nil
}

// run executes the script through a fresh cursor, printing to out.
func (s *session) run(out io.Writer) error {
	r, err := newRunner(s.tbl, s.conf.mode, out)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.run(s.cmds)
}

func (s *session) Close() error {
	return s.tbl.Close()
}
