// shiftctl runs scheduling scenarios from the command line using the
// local best-effort solver or a remote service.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwave-examples/employee-scheduling/internal/jobs"
	"github.com/dwave-examples/employee-scheduling/pkg/config"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
	"github.com/dwave-examples/employee-scheduling/pkg/schedule"
	"github.com/dwave-examples/employee-scheduling/pkg/solver"
	"github.com/dwave-examples/employee-scheduling/pkg/validate"
)

var (
	flagScenarioFile string
	flagPreset       string
	flagEncoding     string
	flagSeed         int64
	flagTimeLimit    time.Duration
	flagSolverURL    string
	flagStartDate    string
)

func main() {
	root := &cobra.Command{
		Use:   "shiftctl",
		Short: "Workforce scheduling from the command line",
	}

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Build and solve a scheduling scenario, then print the grid",
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVarP(&flagScenarioFile, "scenarios", "f", "", "scenario YAML file (default: built-in presets)")
	solveCmd.Flags().StringVarP(&flagPreset, "preset", "p", "small", "scenario name to run")
	solveCmd.Flags().StringVarP(&flagEncoding, "encoding", "e", "cqm", "model encoding: cqm or matrix")
	solveCmd.Flags().Int64Var(&flagSeed, "seed", 1, "availability generation seed")
	solveCmd.Flags().DurationVar(&flagTimeLimit, "time-limit", 10*time.Second, "local solver time budget")
	solveCmd.Flags().StringVar(&flagSolverURL, "solver-url", "", "remote solver endpoint (default: solve locally)")
	solveCmd.Flags().StringVar(&flagStartDate, "start", "", "schedule start date, YYYY-MM-DD")

	listCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List available scenario presets",
		RunE:  runList,
	}
	listCmd.Flags().StringVarP(&flagScenarioFile, "scenarios", "f", "", "scenario YAML file (default: built-in presets)")

	root.AddCommand(solveCmd, listCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	file, err := config.Load(flagScenarioFile)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(file.Scenarios))
	for name := range file.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sc := file.Scenarios[name]
		fmt.Printf("%-10s %2d employees, %2d shifts, band [%d,%d]\n",
			name, sc.NumEmployees, sc.NumShifts, sc.MinShifts, sc.MaxShifts)
	}
	return nil
}

func runSolve(cmd *cobra.Command, _ []string) error {
	file, err := config.Load(flagScenarioFile)
	if err != nil {
		return err
	}
	sc, err := file.Get(flagPreset)
	if err != nil {
		return err
	}

	start := models.DefaultStartDate(time.Now())
	if flagStartDate != "" {
		start, err = time.Parse("2006-01-02", flagStartDate)
		if err != nil {
			return fmt.Errorf("bad start date: %w", err)
		}
	}

	p, err := sc.Problem(flagSeed, start)
	if err != nil {
		return err
	}

	encoding, err := jobs.ParseEncoding(flagEncoding)
	if err != nil {
		return err
	}

	var slv solver.Solver
	if flagSolverURL != "" {
		slv = solver.NewRemote(flagSolverURL, os.Getenv("SOLVER_API_KEY"), nil)
	} else {
		slv = solver.NewLocal(flagTimeLimit, flagSeed)
	}

	runner := jobs.NewRunner(slv, nil)
	outcome, err := runner.Solve(context.Background(), p, encoding)
	if err != nil {
		return err
	}

	fmt.Println(schedule.Legend())
	fmt.Println(schedule.RenderText(outcome.Grid))

	if outcome.Feasible {
		fmt.Println("Schedule is feasible.")
		return nil
	}
	fmt.Printf("Schedule is infeasible (%d violations):\n", outcome.Violations.Count())
	for _, cat := range models.Categories {
		msgs := outcome.Violations[cat]
		if len(msgs) == 0 {
			continue
		}
		fmt.Printf("  %s:\n", validate.Headings[cat])
		for _, msg := range msgs {
			fmt.Printf("    - %s\n", msg)
		}
	}
	return nil
}
