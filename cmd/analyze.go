package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facade-energy/internal/energy"
	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/report"
	"github.com/sells-group/facade-energy/internal/store"
	"github.com/sells-group/facade-energy/internal/validation"
)

// analysisEnv bundles what the analysis commands need.
type analysisEnv struct {
	store    store.Store
	analyzer *energy.Analyzer
}

func (e *analysisEnv) Close() {
	e.store.Close() //nolint:errcheck
}

func initAnalysisEnv(ctx context.Context) (*analysisEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	analyzer, err := initAnalyzer(st, nil)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return &analysisEnv{store: st, analyzer: analyzer}, nil
}

// -- analyze --

var analyzeCmd = &cobra.Command{
	Use:   "analyze <building-id> <city>",
	Short: "Analyze one building in one city",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analysis.Timeout())
		defer cancel()

		if err := validation.BuildingID(args[0]); err != nil {
			return err
		}

		env, err := initAnalysisEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		city, err := validation.City(env.analyzer.Tables().Cities(), args[1])
		if err != nil {
			return err
		}

		res, err := env.analyzer.Analyze(ctx, args[0], city)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if cfg.Analysis.RecordHistory {
			if _, err := env.store.RecordAnalysis(ctx, args[0], city, res.Totals); err != nil {
				zap.L().Warn("failed to record analysis", zap.String("building_id", args[0]), zap.Error(err))
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeIndentedJSON(cmd.OutOrStdout(), res)
		}
		formatAnalysis(cmd.OutOrStdout(), city, res)
		return nil
	},
}

// -- compare --

var compareCmd = &cobra.Command{
	Use:   "compare <building-id-1> <building-id-2> <city>",
	Short: "Compare two buildings in one city",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analysis.Timeout())
		defer cancel()

		id1, id2 := args[0], args[1]
		for _, id := range []string{id1, id2} {
			if err := validation.BuildingID(id); err != nil {
				return err
			}
		}
		if id1 == id2 {
			return eris.New("cannot compare a building with itself")
		}

		env, err := initAnalysisEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		city, err := validation.City(env.analyzer.Tables().Cities(), args[2])
		if err != nil {
			return err
		}

		cmp, err := env.analyzer.Compare(ctx, id1, id2, city)
		if err != nil {
			return eris.Wrap(err, "compare")
		}

		if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
			b1, err := env.store.GetBuilding(ctx, id1)
			if err != nil {
				return eris.Wrap(err, "compare")
			}
			b2, err := env.store.GetBuilding(ctx, id2)
			if err != nil {
				return eris.Wrap(err, "compare")
			}
			f, err := report.ComparisonWorkbook(b1, b2, city, cmp)
			if err != nil {
				return err
			}
			if err := report.Save(f, path); err != nil {
				return err
			}
			zap.L().Info("comparison written", zap.String("path", path))
		}

		formatComparison(cmd.OutOrStdout(), city, cmp)
		return nil
	},
}

// -- rank --

var rankCmd = &cobra.Command{
	Use:   "rank <building-id>",
	Short: "Rank every supported city by the building's cooling cost",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analysis.Timeout())
		defer cancel()

		if err := validation.BuildingID(args[0]); err != nil {
			return err
		}

		env, err := initAnalysisEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rankings, err := env.analyzer.Rank(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "rank")
		}

		if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
			b, err := env.store.GetBuilding(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "rank")
			}
			f, err := report.RankingWorkbook(b, rankings)
			if err != nil {
				return err
			}
			if err := report.Save(f, path); err != nil {
				return err
			}
			zap.L().Info("ranking written", zap.String("path", path))
		}

		formatRanking(cmd.OutOrStdout(), rankings)
		return nil
	},
}

// -- cities --

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List the cities with radiation and rate data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		analyzer, err := initAnalyzer(nil, nil)
		if err != nil {
			return err
		}
		for _, c := range analyzer.Tables().Cities() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the full result as JSON")
	compareCmd.Flags().String("xlsx", "", "also write the comparison to this XLSX file")
	rankCmd.Flags().String("xlsx", "", "also write the ranking to this XLSX file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(citiesCmd)
}

var facadeOrder = []model.Direction{model.North, model.South, model.East, model.West, model.Roof}

// formatAnalysis writes a per-façade breakdown and totals to out.
func formatAnalysis(out io.Writer, city string, res *model.AnalysisResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "City: %s\n\n", city)
	_, _ = fmt.Fprintln(w, "FACADE\tAREA_M2\tHEAT_GAIN_BTU\tCOOLING_KWH\tENERGY_KWH\tCOST")
	for _, dir := range facadeOrder {
		fr, ok := res.FacadeResults[dir]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.4f\t%.4f\t%.4f\n",
			dir, fr.WindowArea, fr.HeatGainBTU, fr.CoolingLoadKWh, fr.EnergyConsumedKWh, fr.Cost)
	}
	_, _ = fmt.Fprintf(w, "total\t\t%.2f\t%.4f\t%.4f\t%.4f\n",
		res.TotalHeatGainBTU, res.TotalCoolingLoadKWh, res.TotalEnergyConsumedKWh, res.TotalCost)
	_ = w.Flush()
}

// formatComparison writes the two buildings' totals side by side.
func formatComparison(out io.Writer, city string, cmp *model.Comparison) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "City: %s\n\n", city)
	_, _ = fmt.Fprintln(w, "METRIC\tBUILDING_1\tBUILDING_2\tDIFF")
	rows := []struct {
		label  string
		v1, v2 float64
	}{
		{"heat_gain_btu", cmp.Result1.TotalHeatGainBTU, cmp.Result2.TotalHeatGainBTU},
		{"cooling_kwh", cmp.Result1.TotalCoolingLoadKWh, cmp.Result2.TotalCoolingLoadKWh},
		{"energy_kwh", cmp.Result1.TotalEnergyConsumedKWh, cmp.Result2.TotalEnergyConsumedKWh},
		{"cost", cmp.Result1.TotalCost, cmp.Result2.TotalCost},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%+.4f\n", r.label, r.v1, r.v2, r.v2-r.v1)
	}
	_ = w.Flush()
}

// formatRanking writes the ranked cities to out.
func formatRanking(out io.Writer, rankings []model.CityRanking) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tCITY\tHEAT_GAIN_BTU\tCOOLING_KWH\tENERGY_KWH\tCOST")
	for i, r := range rankings {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.2f\t%.4f\t%.4f\t%.4f\n",
			i+1, r.City, r.TotalHeatGainBTU, r.TotalCoolingLoadKWh, r.TotalEnergyConsumedKWh, r.TotalCost)
	}
	_ = w.Flush()
}
