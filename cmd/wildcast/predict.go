package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/appengine-ltd/wildcast/internal/api"
	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

type predictFlags struct {
	date     string
	region   string
	temp     float64
	wind     float64
	precip   float64
	pressure string
	conds    []string
	days     int
	asJSON   bool
}

func predictCmd(flags *globalFlags) *cobra.Command {
	var pf predictFlags

	cmd := &cobra.Command{
		Use:   "predict <species>",
		Short: "Predict activity for a species on a date",
		Example: `  wildcast predict moose --date 2024-10-10 --temp 4 --cond moon_phase=full
  wildcast predict elk --region rocky_mountains --days 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := pf.request(cmd, args[0])
			if err != nil {
				return err
			}
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			if pf.days > 1 {
				results, err := rt.engine.Forecast(cmd.Context(), req, pf.days)
				if err != nil {
					return err
				}
				if pf.asJSON {
					return writeJSON(out, results)
				}
				return writeForecast(out, results)
			}

			result, err := rt.engine.Query(cmd.Context(), req)
			if err != nil {
				return err
			}
			if pf.asJSON {
				return writeJSON(out, result)
			}
			return writePrediction(out, result)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&pf.date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	f.StringVarP(&pf.region, "region", "r", "", "region (default the species' primary region)")
	f.Float64VarP(&pf.temp, "temp", "t", 0, "air temperature in °C")
	f.Float64Var(&pf.wind, "wind", 0, "wind speed in mph")
	f.Float64Var(&pf.precip, "precip", 0, "precipitation in inches per hour")
	f.StringVar(&pf.pressure, "pressure", "", "pressure trend: rising, falling or steady")
	f.StringArrayVar(&pf.conds, "cond", nil, "extra observation as field=value (repeatable)")
	f.IntVar(&pf.days, "days", 1, "forecast this many consecutive days")
	f.BoolVar(&pf.asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func (pf predictFlags) request(cmd *cobra.Command, species string) (wildlife.QueryRequest, error) {
	req := wildlife.QueryRequest{
		Species:    species,
		Conditions: wildlife.Observation{},
	}

	now := time.Now().UTC()
	req.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if pf.date != "" {
		d, err := time.Parse(time.DateOnly, pf.date)
		if err != nil {
			return req, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", pf.date)
		}
		req.Date = d
	}
	if pf.region != "" {
		req.Location = &wildlife.Location{Region: pf.region}
	}

	// Zero is a real temperature, so only flags the user set are applied.
	changed := cmd.Flags().Changed
	if changed("temp") {
		t := pf.temp
		req.Temperature = &t
	}
	if changed("wind") {
		req.Conditions[wildlife.FieldWindSpeed] = wildlife.Num(pf.wind)
	}
	if changed("precip") {
		req.Conditions[wildlife.FieldPrecipitation] = wildlife.Num(pf.precip)
	}
	if pf.pressure != "" {
		req.Conditions[wildlife.FieldPressureTrend] = wildlife.Str(pf.pressure)
	}
	for _, raw := range pf.conds {
		field, value, err := api.ParseCondition(raw)
		if err != nil {
			return req, err
		}
		req.Conditions[field] = value
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePrediction(w io.Writer, r wildlife.PredictionResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Species:\t%s (%s)\n", r.Species, r.Region)
	fmt.Fprintf(tw, "Date:\t%s\n", r.Date)
	fmt.Fprintf(tw, "Phase:\t%s (%s to %s, %d days left)\n", r.Phase.Name, r.PhaseStart, r.PhaseEnd, r.DaysRemaining)
	fmt.Fprintf(tw, "Activity:\t%.2f %s\n", r.FinalActivity, r.ActivityLevel)
	fmt.Fprintf(tw, "Confidence:\t%.2f\n", r.Confidence)
	fmt.Fprintf(tw, "Modifiers:\ttemperature %+.2f, conditions %+.2f, rules %+.2f\n",
		r.TemperatureModifier, r.ConditionModifier, r.RuleModifier)
	if len(r.ApplicableRules) > 0 {
		names := make([]string, 0, len(r.ApplicableRules))
		for _, app := range r.ApplicableRules {
			names = append(names, app.RuleID)
		}
		fmt.Fprintf(tw, "Rules:\t%s\n", strings.Join(names, ", "))
	}
	for i, rec := range r.Recommendations {
		label := ""
		if i == 0 {
			label = "Hunt:"
		}
		fmt.Fprintf(tw, "%s\t%s (%.2f, %s)\n", label, rec.Habitat, rec.Priority, rec.Reason)
	}
	return tw.Flush()
}

func writeForecast(w io.Writer, results []wildlife.PredictionResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPHASE\tACTIVITY\tLEVEL\tTOP HABITAT")
	for _, r := range results {
		top := "-"
		if len(r.Recommendations) > 0 {
			top = r.Recommendations[0].Habitat
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", r.Date, r.Phase.Name, r.FinalActivity, r.ActivityLevel, top)
	}
	return tw.Flush()
}
