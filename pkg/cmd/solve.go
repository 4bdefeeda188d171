package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hornverify/hornverify/pkg/chcparse"
	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/engine"
	"github.com/hornverify/hornverify/pkg/inspect"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/util/termio"
	"github.com/hornverify/hornverify/pkg/witness"
)

// solverFactory is overridden by solve_z3.go's init (build tag z3) to
// return a real incremental-solver factory; the default build has no
// SMT backend wired in, since go-z3 is cgo and not every build needs
// it (spec.md §6 "External Interfaces").
var solverFactory func(*term.Store) smt.Factory

var solveCmd = &cobra.Command{
	Use:   "solve [flags] chc_file",
	Short: "Decide SAFE / UNSAFE / UNKNOWN for a CHC program.",
	Long: `Decide SAFE / UNSAFE / UNKNOWN for a CHC program given as a small
SMT-LIB flavoured Horn-clause file (declare-rel / rule / query).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if solverFactory == nil {
			fmt.Println("hornverify: built without an SMT backend; rebuild with -tags z3")
			os.Exit(2)
		}

		cfg := config.Default()

		engineKind, ok := config.ParseEngineKind(getString(cmd, "engine"))
		if !ok {
			fmt.Printf("hornverify: unknown engine %q\n", getString(cmd, "engine"))
			os.Exit(1)
		}

		cfg.Engine = engineKind
		cfg.MaxK = getUint(cmd, "max-k")

		if timeout, err := cmd.Flags().GetDuration("timeout"); err == nil && timeout > 0 {
			cfg.Timeout = timeout
		}

		src := readFileOrDie(args[0])

		hg, err := chcparse.Parse(string(src))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		store := hg.Store()
		factory := solverFactory(store)

		ctx := context.Background()

		if cfg.Timeout > 0 {
			var cancel context.CancelFunc

			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		res, err := engine.Solve(ctx, hg, factory, cfg)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		fmt.Println(res.Answer)

		switch {
		case res.Answer == witness.Unsafe && res.Invalid != nil:
			reportInvalid(cmd, store, res.Invalid)
		case res.Answer == witness.Safe && res.Valid != nil:
			reportValid(store, res.Valid)
		}
	},
}

func reportInvalid(cmd *cobra.Command, store *term.Store, inv *witness.InvalidityWitness) {
	vars := invalidityVars(inv)

	if !getFlag(cmd, "inspect") {
		if err := inspect.FormatInvalidityWitness(os.Stdout, inv, vars); err != nil {
			fmt.Println(err)
		}

		return
	}

	t, err := termio.NewTerminal()
	if err != nil {
		fmt.Println("hornverify: --inspect requires a terminal;", err)

		if ferr := inspect.FormatInvalidityWitness(os.Stdout, inv, vars); ferr != nil {
			fmt.Println(ferr)
		}

		return
	}

	if rerr := inspect.NewTraceViewer(t, inv, vars).Run(); rerr != nil {
		fmt.Println(rerr)
	}
}

func reportValid(store *term.Store, valid *witness.ValidityWitness) {
	if err := inspect.FormatValidityWitness(os.Stdout, store, valid); err != nil {
		fmt.Println(err)
	}
}

// invalidityVars collects every variable key mentioned across inv's
// steps, sorted for stable column ordering.
func invalidityVars(inv *witness.InvalidityWitness) []term.VarKey {
	seen := make(map[term.VarKey]bool)

	var vars []term.VarKey

	for _, step := range inv.Steps {
		for k := range step.Values {
			if !seen[k] {
				seen[k] = true

				vars = append(vars, k)
			}
		}
	}

	return inspect.SortedVars(vars)
}

func init() {
	solveCmd.Flags().String("engine", "kind", "transition-system solver: kind, accel-split, accel-single")
	solveCmd.Flags().Uint("max-k", 0, "bound the unrolling depth (0 = unbounded, subject to --timeout)")
	solveCmd.Flags().Duration("timeout", 0, "wall-clock deadline for the whole solve (0 = none)")
	solveCmd.Flags().Bool("inspect", false, "browse an UNSAFE counterexample interactively instead of printing it")

	rootCmd.AddCommand(solveCmd)
}
