// Package main provides sheetctl, a command-line host for one character sheet.
//
// Each invocation loads a sheet from a file or a character store, applies one
// operation through a sheet.Session, stores the result and prints it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/sheet"
	"github.com/cory-johannsen/charsheet/internal/observability"
)

func main() {
	if _, err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "sheetctl:", err)
		os.Exit(1)
	}
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "sheetctl:", err)
		os.Exit(1)
	}
}

// run executes one command line against stdout.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	root := newRootCmd(stdout)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type options struct {
	configPath string
	sheetPath  string
	id         string
	rolls      string

	item      string
	amount    int
	damage    string
	attr      string
	skill     string
	attack    string
	resource  string
	condition string
	mode      string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "sheetctl",
		Short:         "Inspect and change one character sheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "path to configuration file (defaults and CHARSHEET_ env when empty)")
	pf.StringVar(&o.sheetPath, "sheet", "", "character sheet file (.json, .yaml or .yml)")
	pf.StringVar(&o.id, "id", "", "character id in the configured store, instead of --sheet")
	pf.StringVar(&o.rolls, "rolls", "", "comma-separated zero-based die faces to replay instead of random rolls")

	for _, name := range opNames() {
		root.AddCommand(newOpCmd(name, ops[name], o, stdout))
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the characters in the configured store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(o, func(e env) error { return listStored(cmd.Context(), e, stdout) })
			},
		},
		&cobra.Command{
			Use:   "push",
			Short: "Copy the --sheet file into the configured store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if o.sheetPath == "" {
					return fmt.Errorf("--sheet is required")
				}
				return withEnv(o, func(e env) error { return push(cmd.Context(), e, o.sheetPath, stdout) })
			},
		},
	)
	return root
}

func newOpCmd(name string, op operation, o *options, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: op.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (o.sheetPath == "") == (o.id == "") {
				return fmt.Errorf("exactly one of --sheet or --id is required")
			}
			return withEnv(o, func(e env) error { return runOp(cmd.Context(), e, name, op, o, stdout) })
		},
	}
	bindFlags(cmd, o, op.flags)
	return cmd
}

// env is what every command needs once configuration is loaded.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	deps   sheet.Deps
}

func withEnv(o *options, fn func(env) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger("sheetctl", cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	roller, err := rollerFor(o.rolls, logger)
	if err != nil {
		return err
	}
	deps, closeDeps, err := loadDeps(cfg, roller, logger)
	if err != nil {
		return err
	}
	defer closeDeps()
	return fn(env{cfg: cfg, logger: logger, deps: deps})
}

func runOp(ctx context.Context, e env, name string, op operation, o *options, stdout io.Writer) error {
	st, err := openStore(ctx, e, o)
	if err != nil {
		return err
	}
	defer st.close()

	loaded, err := st.load(ctx)
	if err != nil {
		return err
	}
	e.logger.Info("sheet loaded", observability.CharacterFields(loaded.ID, loaded.Name)...)

	m := sheet.NewManager(e.deps)
	s, err := m.Open(loaded)
	if err != nil {
		return err
	}
	printReport, err := op.run(s, *o, stdout)
	if err != nil {
		return err
	}
	err = m.Flush(ctx, 1, func(ctx context.Context, c *character.Character, intents []string) error {
		if err := st.store(ctx, c, strings.Join(intents, ",")); err != nil {
			return err
		}
		e.logger.Info("sheet stored", zap.String("op", name), zap.Strings("intents", intents))
		return nil
	})
	if err != nil {
		return err
	}
	if printReport {
		return writeReport(stdout, s)
	}
	return nil
}

func writeReport(w io.Writer, s *sheet.Session) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sheet.BuildReport(s.Character(), s.Table())); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

func rollerFor(faces string, logger *zap.Logger) (*dice.Roller, error) {
	if faces == "" {
		return dice.NewLoggedRoller(dice.NewSource(), logger), nil
	}
	var values []int
	for _, part := range strings.Split(faces, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing --rolls: %w", err)
		}
		values = append(values, v)
	}
	return dice.NewLoggedRoller(&dice.Sequence{Values: values}, logger), nil
}
