package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/patent-scout/internal/landscape"
	"github.com/sells-group/patent-scout/internal/store"
)

var ftoCmd = &cobra.Command{
	Use:   "fto <technology>",
	Short: "Assess freedom to operate for a technology",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := landscapeAnalyzer(cmd, "fto")
		if err != nil {
			return err
		}
		defer closeFn()
		return printJSON(a.FreedomToOperate(cmd.Context(), strings.Join(args, " ")))
	},
}

var priorArtCmd = &cobra.Command{
	Use:   "prior-art <invention description>",
	Short: "Search prior art for an invention",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := landscapeAnalyzer(cmd, "prior-art")
		if err != nil {
			return err
		}
		defer closeFn()
		return printJSON(a.PriorArt(cmd.Context(), strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(ftoCmd)
	rootCmd.AddCommand(priorArtCmd)
}

// landscapeAnalyzer validates config for mode and builds an analyzer that
// shares the scan's patent cache when a store is configured.
func landscapeAnalyzer(cmd *cobra.Command, mode string) (*landscape.Analyzer, func(), error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, nil, err
	}
	st, err := initStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {}
	var cache landscape.Cache
	if st != nil {
		closeFn = func() { _ = st.Close() }
		cache = store.Store(st)
	}

	a, err := buildAnalyzer(cfg, newFetcher(cfg), newLimiters(cfg), cache)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return a, closeFn, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
