package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/config"
	"github.com/crillab/featsat/explain"
	"github.com/crillab/featsat/export"
	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/mwp"
	"github.com/crillab/featsat/oracle"
	"github.com/crillab/featsat/server"
	"github.com/crillab/featsat/translate"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// app holds the state shared by all commands.
type app struct {
	configPath    string
	backend       string
	maxIterations int
	logLevel      string
	verbose       bool
	asJSON        bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "featsat",
		Short:         "Analyse feature models with a SAT solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.backend, "solver", "", "SAT backend: "+strings.Join(oracle.Backends(), ", "))
	flags.IntVar(&a.maxIterations, "max-iterations", 0, "maximum number of solver models during enumeration, 0 for no limit")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "sets verbose mode on")
	flags.BoolVar(&a.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		a.solveCmd(),
		a.formulaCmd(),
		a.dimacsCmd(),
		a.dotCmd(),
		a.explainCmd(),
		a.checkCmd(),
		a.countCmd(),
		a.smallestCmd(),
		a.translateCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads the configuration, then applies the flags that were set.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver.Backend = strings.ToLower(a.backend)
	}
	if flags.Changed("max-iterations") {
		cfg.Solver.MaxIterations = a.maxIterations
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
	return nil
}

// context returns the context of a solving command, bounded by the configured timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg.Solver.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Solver.Timeout)
	}
	return context.WithCancel(ctx)
}

func readModel(path string) (*fm.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()
	m, err := fm.Parse(path, f)
	if err != nil {
		return nil, fmt.Errorf("could not parse model in %q: %w", path, err)
	}
	return m, nil
}

// compile reads and compiles the model at path, warning about dropped constraints.
func (a *app) compile(cmd *cobra.Command, path string) (*cnf.Problem, error) {
	m, err := readModel(path)
	if err != nil {
		return nil, err
	}
	pb, err := cnf.Compile(m)
	if err != nil {
		return nil, fmt.Errorf("could not compile %q: %w", path, err)
	}
	for _, d := range pb.Dropped {
		a.logger.Warn("constraint ignored", "id", d.ID, "reason", d.Reason)
	}
	if a.verbose && !a.asJSON {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "c solving %s\n", path)
		fmt.Fprintf(out, "c | Number of features  : %9d\n", pb.NbVars())
		fmt.Fprintf(out, "c | Number of clauses   : %9d\n", len(pb.Clauses))
		fmt.Fprintf(out, "c | Number of rules     : %9d\n", len(pb.Rules))
	}
	return pb, nil
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <model>",
		Short: "List the minimal valid products of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			factory, err := oracle.New(a.cfg.Solver.Backend)
			if err != nil {
				return err
			}
			e := mwp.NewEnumerator(
				mwp.WithOracle(factory),
				mwp.WithMaxIterations(a.cfg.Solver.MaxIterations),
				mwp.WithLogger(a.logger),
			)
			ctx, cancel := a.context(cmd)
			defer cancel()
			res, err := e.Enumerate(ctx, pb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.printJSON(out, res)
			}
			if a.verbose {
				fmt.Fprintf(out, "c nb iterations: %d\nc duration: %v\n", res.Iterations, res.Duration)
			}
			if len(res.Products) == 0 {
				fmt.Fprintln(out, red("UNSATISFIABLE"))
				return nil
			}
			fmt.Fprintln(out, green("SATISFIABLE"))
			for _, p := range res.Products {
				fmt.Fprintln(out, strings.Join(p, " "))
			}
			return nil
		},
	}
}

func (a *app) formulaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formula <model>",
		Short: "Print the boolean formula of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModel(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), export.Formula(m, translate.Default))
			return nil
		},
	}
}

func (a *app) dimacsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dimacs <model>",
		Short: "Print the CNF of a model in the DIMACS format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			return pb.WriteDimacs(cmd.OutOrStdout())
		},
	}
}

func (a *app) dotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dot <model>",
		Short: "Print a Graphviz view of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModel(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), export.Dot(m, translate.Default))
			return nil
		},
	}
}

func (a *app) explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <model>",
		Short: "Explain why a model has no valid product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			diag, err := explain.Diagnose(ctx, pb)
			out := cmd.OutOrStdout()
			if errors.Is(err, explain.ErrSatisfiable) {
				fmt.Fprintln(out, green("SATISFIABLE"))
				return nil
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(out, diag)
			}
			fmt.Fprintln(out, red("UNSATISFIABLE"))
			fmt.Fprintln(out, diag)
			return nil
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <model> <feature>...",
		Short: "Check whether a selection of features is a valid product",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			factory, err := oracle.New(a.cfg.Solver.Backend)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			report, err := explain.Check(ctx, pb, args[1:], factory)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.printJSON(out, report)
			}
			if report.Valid() {
				fmt.Fprintln(out, green("VALID"))
				return nil
			}
			fmt.Fprintln(out, red("INVALID"))
			for _, r := range report.Violations {
				fmt.Fprintf(out, "  %s\n", r)
			}
			if report.Completable {
				fmt.Fprintln(out, "the selection can be completed into a valid product")
			} else {
				fmt.Fprintln(out, "no valid product contains the selection")
			}
			return nil
		},
	}
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <model>",
		Short: "Count the valid products of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			n, err := mwp.Count(ctx, pb, a.cfg.Solver.BDDNodes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func (a *app) smallestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smallest <model>",
		Short: "Print a valid product with as few features as possible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			product, err := mwp.Smallest(ctx, pb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.printJSON(out, product)
			}
			fmt.Fprintln(out, strings.Join(product, " "))
			return nil
		},
	}
}

func (a *app) translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <statement>...",
		Short: "Translate an English constraint into a boolean expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement := strings.Join(args, " ")
			expr, ok := translate.Default.Translate(statement)
			if !ok {
				return fmt.Errorf("could not translate %q", statement)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", bold(expr), translate.Classify(expr))
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				a.cfg.Server.Addr = addr
			}
			srv, err := server.New(a.cfg, a.logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "address to listen on, overrides the configuration")
	return cmd
}
