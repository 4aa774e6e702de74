package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintCacheStats outputs result cache counters, dispatching based on the output format configured.
func PrintCacheStats(stats schema.CacheStats, cfg *contract.Config) error {
	return dispatch(cfg, stats, func(w io.Writer) error {
		return writeCacheTable(w, stats)
	})
}

func writeCacheTable(w io.Writer, stats schema.CacheStats) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hits", "Misses", "Evictions", "Size", "Max", "Hit Rate"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk([][]string{{
		fmt.Sprint(stats.Hits),
		fmt.Sprint(stats.Misses),
		fmt.Sprint(stats.Evictions),
		fmt.Sprint(stats.CurrentSize),
		fmt.Sprint(stats.MaxSize),
		hitRate(stats),
	}}); err != nil {
		return err
	}
	return table.Render()
}

func hitRate(stats schema.CacheStats) string {
	total := stats.Hits + stats.Misses
	if total == 0 {
		return "-"
	}
	return fmtFloat(float64(stats.Hits)*100/float64(total)) + "%"
}
