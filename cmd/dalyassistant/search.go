package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/app"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/clients/gcs"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/retrieval"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		path  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show which knowledge fragments a query retrieves",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if path != "" {
				cfg.Knowledge.Path = path
			}
			log := logger.NewNop()

			var storage gcs.Reader
			if _, _, ok := gcs.ParseURI(cfg.Knowledge.Path); ok {
				storage, err = gcs.NewReader(cmd.Context(), log)
				if err != nil {
					return err
				}
				defer storage.Close()
			}
			ix := app.LoadKnowledge(cmd.Context(), log, cfg.Knowledge, storage)
			if !ix.Available() {
				return fmt.Errorf("knowledge document %s unavailable: %w", ix.Source(), ix.Err())
			}

			query := strings.Join(args, " ")
			res := retrieval.NewCorpus(ix.Fragments()).Retrieve(query, limit)
			out := cmd.OutOrStdout()
			if res.Empty() {
				fmt.Fprintf(out, "no fragments match %q (%d searched)\n", query, ix.Len())
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, m := range res.Matches {
				fmt.Fprintf(tw, "%d\t%d\t%s\n", i+1, m.Score, m.Fragment.Text)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "knowledge", "", "knowledge document path or gs:// URI (overrides config)")
	cmd.Flags().IntVar(&limit, "max", retrieval.DefaultMaxResults, "maximum fragments to show")
	return cmd
}
