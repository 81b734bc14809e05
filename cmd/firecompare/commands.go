package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/rpgo/fire-compare/internal/config"
	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/internal/jurisdiction"
	"github.com/rpgo/fire-compare/internal/logging"
	"github.com/rpgo/fire-compare/internal/output"
	"github.com/rpgo/fire-compare/internal/share"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	var current *app

	root := &cobra.Command{
		Use:           "firecompare",
		Short:         "Compare time to financial independence across two jurisdictions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			current = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if current != nil {
				current.close()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.settingsPath, "settings", "", "path to a settings file (firecompare.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&flags.format, "format", "f", "", "report format: "+strings.Join(output.AvailableFormatterNames(), ", "))
	pf.StringVarP(&flags.out, "out", "o", "", "write the report to this file or directory instead of stdout")

	getApp := func() *app { return current }
	root.AddCommand(
		newCompareCommand(getApp),
		newSimulateCommand(getApp),
		newShareCommand(getApp),
		newJurisdictionsCommand(getApp),
		newExampleCommand(getApp),
	)
	return root
}

// requestFlags are the request sources shared by compare and simulate.
type requestFlags struct {
	share string
	home  string
	base  string
}

func (rf *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rf.share, "share", "", "read the request from a share string instead of a file")
	cmd.Flags().StringVar(&rf.home, "home", "", "override the home jurisdiction used to rescale spending")
	cmd.Flags().StringVar(&rf.base, "currency", "", "override the base currency")
}

func (rf *requestFlags) load(a *app, args []string) (*domain.ComparisonRequest, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	req, err := a.loadRequest(path, rf.share)
	if err != nil {
		return nil, err
	}
	if rf.home != "" {
		req.HomeJurisdiction = rf.home
	}
	if rf.base != "" {
		req.BaseCurrency = strings.ToUpper(rf.base)
	}
	return req, nil
}

func newCompareCommand(getApp func() *app) *cobra.Command {
	rf := &requestFlags{}
	var noSimulation bool
	cmd := &cobra.Command{
		Use:   "compare [request.yaml]",
		Short: "Compare two jurisdictions for one financial profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			req, err := rf.load(a, args)
			if err != nil {
				return err
			}
			if noSimulation {
				req.Simulation.Enabled = false
			}
			return runComparison(cmd, a, *req)
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&noSimulation, "no-simulation", false, "skip the Monte Carlo pass even if the request enables it")
	return cmd
}

func newSimulateCommand(getApp func() *app) *cobra.Command {
	rf := &requestFlags{}
	var (
		trials     int
		horizon    int
		volatility float64
		seed       int64
		sampler    string
	)
	cmd := &cobra.Command{
		Use:   "simulate [request.yaml]",
		Short: "Compare two jurisdictions and run the Monte Carlo simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			req, err := rf.load(a, args)
			if err != nil {
				return err
			}
			sim := &req.Simulation
			sim.Enabled = true
			if cmd.Flags().Changed("trials") {
				sim.Trials = trials
			}
			if cmd.Flags().Changed("horizon") {
				sim.HorizonYears = horizon
			}
			if cmd.Flags().Changed("volatility") {
				sim.ReturnVolatility = &volatility
			}
			if cmd.Flags().Changed("seed") {
				sim.Seed = seed
			}
			if cmd.Flags().Changed("sampler") {
				sim.Sampler = sampler
			}
			return runComparison(cmd, a, *req)
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&trials, "trials", 0, "number of Monte Carlo trials")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "simulation horizon in years")
	cmd.Flags().Float64Var(&volatility, "volatility", 0, "annual return volatility (normal sampler)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed; the same seed reproduces the same result")
	cmd.Flags().StringVar(&sampler, "sampler", "", "return sampler: normal or historical")
	return cmd
}

func runComparison(cmd *cobra.Command, a *app, req domain.ComparisonRequest) error {
	eng, err := a.engine()
	if err != nil {
		return err
	}
	report, err := eng.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	path, err := a.writeReport(cmd.OutOrStdout(), report)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	}

	res := report.Result
	a.events.Emit(logging.EventComparisonCompleted, map[string]any{
		"run_id":     a.runID,
		"a":          res.A.Jurisdiction,
		"b":          res.B.Jurisdiction,
		"winner":     string(res.Winner),
		"reason":     string(res.Reason),
		"simulation": res.SimulationA != nil,
		"format":     output.NormalizeFormatName(a.format()),
		"warnings":   len(report.Warnings),
	})
	return nil
}

func newShareCommand(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode or decode shareable comparison strings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "encode [request.yaml]",
		Short: "Print the share string for a request file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			req, err := a.loadRequest(path, "")
			if err != nil {
				return err
			}
			encoded := share.Encode(*req)
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			a.events.Emit(logging.EventShareEncoded, map[string]any{
				"run_id": a.runID,
				"length": len(encoded),
			})
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "decode <share-string>",
		Short: "Print the request YAML encoded in a share string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := share.Decode(args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(&req)
			if err != nil {
				return fmt.Errorf("failed to marshal YAML: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return cmd
}

func newJurisdictionsCommand(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jurisdictions",
		Short: "List the jurisdictions in the tax table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			table, err := jurisdiction.Default()
			if path := a.settings.Data.Jurisdictions; path != "" {
				table, err = jurisdiction.LoadFile(path)
			}
			if err != nil {
				return fmt.Errorf("failed to load jurisdictions: %w", err)
			}

			profiles := table.List()
			if output.NormalizeFormatName(a.flags.format) == "json" {
				data, err := json.MarshalIndent(profiles, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tCURRENCY\tINCOME\tCAP GAINS\tSUB\tCOL")
			for _, p := range profiles {
				sub := "-"
				if p.SubJurisdictionRate != nil {
					sub = output.FormatPercentage(*p.SubJurisdictionRate)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
					p.Code, p.Name, p.Currency,
					output.FormatPercentage(p.IncomeTaxRate),
					output.FormatPercentage(p.CapitalGainsTaxRate),
					sub, p.CostOfLivingMultiplier())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			a.logger.Debug("listed jurisdictions", zap.String("op", "main"), zap.String("version", table.Version), zap.Int("count", len(profiles)))
			return nil
		},
	}
}

func newExampleCommand(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an example request file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			parser := config.NewInputParser()
			req := parser.CreateExampleRequest()
			if a.flags.out != "" {
				if err := parser.SaveToFile(req, a.flags.out); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Example request written to %s\n", a.flags.out)
				return nil
			}
			data, err := yaml.Marshal(req)
			if err != nil {
				return fmt.Errorf("failed to marshal YAML: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
