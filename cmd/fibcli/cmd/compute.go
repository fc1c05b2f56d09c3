package cmd

import (
	"fmt"
	"strconv"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/spf13/cobra"
)

// NewComputeCommand creates the compute command
func NewComputeCommand(opts *rootOptions) *cobra.Command {
	var (
		strategy string
		big      bool
	)
	cmd := &cobra.Command{
		Use:   "compute N",
		Short: "Print F(N)",
		Long: `Print the N-th Fibonacci number. Indices above 93 overflow unless --big
is given. Pass negative indices after "--".`,
		Example: "  fibcli compute 30\n  fibcli compute 200 --big",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIndexArg("N", args[0])
			if err != nil {
				return err
			}

			if big {
				term, err := fibonacci.ComputeBigContext(cmd.Context(), n)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), term.String())
				return nil
			}

			c, err := newComputer(opts, strategy, cmd)
			if err != nil {
				return err
			}
			term, err := c.ComputeContext(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), term)
			return nil
		},
	}
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "iterative", "Computation strategy (recursive, iterative, memoized)")
	cmd.Flags().BoolVar(&big, "big", false, "Use arbitrary precision")
	return cmd
}

// NewSequenceCommand creates the sequence command
func NewSequenceCommand(opts *rootOptions) *cobra.Command {
	var strategy string
	cmd := &cobra.Command{
		Use:     "sequence FROM TO",
		Short:   "Print F(FROM) through F(TO), one per line",
		Example: "  fibcli sequence 0 10",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndexArg("FROM", args[0])
			if err != nil {
				return err
			}
			to, err := parseIndexArg("TO", args[1])
			if err != nil {
				return err
			}

			c, err := newComputer(opts, strategy, cmd)
			if err != nil {
				return err
			}
			terms, err := fibonacci.Sequence(cmd.Context(), c, from, to)
			if err != nil {
				return err
			}
			for _, term := range terms {
				fmt.Fprintln(cmd.OutOrStdout(), term)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "iterative", "Computation strategy (recursive, iterative, memoized)")
	return cmd
}

func newComputer(opts *rootOptions, name string, cmd *cobra.Command) (fibonacci.Computer, error) {
	strategy, err := fibonacci.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return fibonacci.NewComputer(strategy, fibonacci.WithLogger(logger)), nil
}

func parseIndexArg(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}
