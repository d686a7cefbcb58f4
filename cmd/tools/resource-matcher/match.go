// cmd/tools/resource-matcher/match.go
package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"resource-workers/internal/matching"

	"github.com/spf13/cobra"
)

// requestFlags are shared by match and filter.
type requestFlags struct {
	language    string
	zipcode     string
	income      string
	age         int
	category    string
	subcategory string
	latitude    float64
	longitude   float64
	maxResults  int
	text        bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.language, "language", "l", "", "Preferred language (en, es, Spanish, es-MX, ...)")
	fs.StringVarP(&f.zipcode, "zipcode", "z", "", "Zipcode of the person seeking help")
	fs.StringVar(&f.income, "income", "", "Income bracket (e.g. low)")
	fs.IntVar(&f.age, "age", -1, "Age in years")
	fs.StringVar(&f.category, "category", "", "Requested category")
	fs.StringVar(&f.subcategory, "subcategory", "", "Requested subcategory")
	fs.Float64Var(&f.latitude, "lat", 0, "Latitude; requires --lon")
	fs.Float64Var(&f.longitude, "lon", 0, "Longitude; requires --lat")
	fs.IntVarP(&f.maxResults, "max-results", "n", matching.DefaultMaxResults, "Maximum results (negative = no limit)")
	fs.BoolVar(&f.text, "text", false, "Print the chat reply text instead of a table")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
}

func (f *requestFlags) request(cmd *cobra.Command) matching.Request {
	req := matching.Request{
		Language:    f.language,
		Zipcode:     f.zipcode,
		Income:      f.income,
		Category:    f.category,
		Subcategory: f.subcategory,
	}
	if f.age >= 0 {
		age := f.age
		req.Age = &age
	}
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		lat, lon := f.latitude, f.longitude
		req.Latitude, req.Longitude = &lat, &lon
	}
	return req
}

func newMatchCmd(opts *rootOptions) *cobra.Command {
	flags := &requestFlags{}
	var minScore float64

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank resources with the weighted scoring model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			matches, err := engine.FindMatchingResources(flags.request(cmd), minScore, flags.maxResults)
			if err != nil {
				return err
			}
			return printMatches(cmd.OutOrStdout(), opts, flags, matches, "")
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&minScore, "min-score", matching.DefaultMinScore, "Minimum score in [0,1]")
	return cmd
}

func newFilterCmd(opts *rootOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Select resources with the direct language/zipcode/category filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			result, err := engine.FilterResources(flags.request(cmd), flags.maxResults)
			if err != nil {
				return err
			}
			return printMatches(cmd.OutOrStdout(), opts, flags, result.Matches, result.Mode)
		},
	}

	flags.register(cmd)
	return cmd
}

func printMatches(out io.Writer, opts *rootOptions, flags *requestFlags, matches []matching.MatchedResource, filterMode string) error {
	if flags.text {
		_, err := fmt.Fprintln(out, matching.FormatResourceResponse(matches, flags.language))
		return err
	}

	if opts.jsonOutput {
		doc := map[string]interface{}{"matches": matches, "matchCount": len(matches)}
		if filterMode != "" {
			doc["filterMode"] = filterMode
		}
		return writeJSON(out, doc)
	}

	if filterMode != "" {
		fmt.Fprintf(out, "filter mode: %s\n", filterMode)
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "no matching resources")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tID\tTITLE\tSUMMARY")
	for i, m := range matches {
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\t%s\n", i+1, m.Score, m.Resource.ID, m.Resource.Title, m.Rationale.Summary)
	}
	return tw.Flush()
}
