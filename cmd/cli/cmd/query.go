// Package cmd - read-only query commands
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"observatory/core/aggregate"
	"observatory/core/engine"
	"observatory/core/filter"
	"observatory/core/linkage"
	"observatory/core/output"
	"observatory/core/records"
	"observatory/core/region"
	"observatory/internal/errors"
	"observatory/internal/logging"
)

var linkRegion string

// summaryCmd prints region summaries
var summaryCmd = &cobra.Command{
	Use:   "summary [region...]",
	Short: "Show per-state summaries under the filter",
	Long: `Show per-state summaries. With no arguments every state with at least
one aggregated record is shown. State names accept aliases and
unaccented spellings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}

		var list []aggregate.Summary
		if len(args) == 0 {
			for _, s := range e.Summaries() {
				if !s.Empty() {
					list = append(list, s)
				}
			}
		} else {
			for _, raw := range args {
				id, err := resolveRegion(e, raw)
				if err != nil {
					return err
				}
				s, _ := e.RegionSummary(id)
				list = append(list, s)
			}
		}
		if list == nil {
			list = []aggregate.Summary{}
		}
		return render(cmd, &output.Document{Filter: e.Filter(), Summaries: list})
	},
}

// valueCmd prints one region's value for the active layer
var valueCmd = &cobra.Command{
	Use:   "value <region>",
	Short: "Show a state's map value for the active layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		id, err := resolveRegion(e, args[0])
		if err != nil {
			return err
		}
		layer := e.Filter().Layer
		return render(cmd, &output.Document{
			Filter: e.Filter(),
			Value:  &output.ValueResult{Region: string(id), Layer: layer, Value: e.RegionValue(id, layer)},
		})
	},
}

// linkagesCmd prints FDI-to-policy linkages
var linkagesCmd = &cobra.Command{
	Use:   "linkages",
	Short: "Show FDI projects linked to state policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}

		groups := e.LinkageGroups()
		if linkRegion != "" {
			id, err := resolveRegion(e, linkRegion)
			if err != nil {
				return err
			}
			groups = linkage.GroupByRegion(e.LinkagesForRegion(id))
		}
		if groups == nil {
			groups = []linkage.StateGroup{}
		}
		return render(cmd, &output.Document{Filter: e.Filter(), Linkages: groups})
	},
}

// recordsCmd lists filtered source records
var recordsCmd = &cobra.Command{
	Use:       "records <kind>",
	Short:     "List the filtered records of one dataset",
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := records.ParseKind(args[0])
		if !ok {
			return errors.NotFound("dataset", args[0]).
				WithContext("valid", strings.Join(kindNames(), ", "))
		}
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return render(cmd, &output.Document{
			Filter:  e.Filter(),
			Records: &output.RecordSet{Kind: kind, Items: e.FilteredRecords(kind)},
		})
	},
}

// distributionCmd prints the ranking that accompanies a layer
var distributionCmd = &cobra.Command{
	Use:   "distribution [layer]",
	Short: "Show the chart ranking for a layer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		layer, err := layerArg(e, args)
		if err != nil {
			return err
		}
		d := e.Distribution(layer)
		return render(cmd, &output.Document{Filter: e.Filter(), Distribution: &d})
	},
}

// pieCmd prints the share chart that accompanies a layer
var pieCmd = &cobra.Command{
	Use:   "pie [layer]",
	Short: "Show the share breakdown for a layer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		layer, err := layerArg(e, args)
		if err != nil {
			return err
		}
		b := e.Breakdown(layer)
		return render(cmd, &output.Document{Filter: e.Filter(), Breakdown: &b})
	},
}

// statsCmd prints the headline figures of a layer
var statsCmd = &cobra.Command{
	Use:   "stats [layer]",
	Short: "Show headline figures for a layer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		layer, err := layerArg(e, args)
		if err != nil {
			return err
		}
		st := e.Stats(layer)
		return render(cmd, &output.Document{Filter: e.Filter(), Stats: &st})
	},
}

// layersCmd lists the available layers with the record count each draws
var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List map layers",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		for _, l := range filter.Layers() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-45s %-12s %6d\n", l.Key, l.Title, l.Type, e.LayerCount(l.Key))
		}
		return nil
	},
}

// reportCmd prints ingestion and aggregation diagnostics as JSON
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show unresolved regions, dangling links and geometry coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context(), nil)
		if err != nil {
			return err
		}
		report := e.Report()
		if n := report.Kinds.Unresolved(); n > 0 {
			logging.Warn("records with unresolved regions were skipped", zap.Int("count", n))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	linkagesCmd.Flags().StringVarP(&linkRegion, "region", "r", "", "only FDI located in this state")
}

func resolveRegion(e *engine.Engine, raw string) (region.ID, error) {
	id, ok := e.Store().Normalizer().Normalize(raw)
	if !ok {
		return "", errors.NotFound("region", raw)
	}
	return id, nil
}

// layerArg reads an optional layer argument, defaulting to the active layer
func layerArg(e *engine.Engine, args []string) (filter.Layer, error) {
	if len(args) == 0 {
		return e.Filter().Layer, nil
	}
	layer, ok := filter.ParseLayer(args[0])
	if !ok {
		return "", errors.Input("unknown layer").WithContext("layer", args[0])
	}
	return layer, nil
}

func kindNames() []string {
	kinds := records.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
