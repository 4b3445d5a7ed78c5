package main

import (
	"github.com/spf13/cobra"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/client"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/envutil"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/tui"
)

func newChatCmd() *cobra.Command {
	var (
		baseURL string
		opts    tui.Options
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a running gateway from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(baseURL)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), c, opts)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "gateway base URL (default: $DALY_API_URL or http://localhost:8080)")
	cmd.Flags().BoolVar(&opts.Stream, "stream", envutil.Bool("DALY_CLIENT_STREAM", false), "stream replies as they are generated")
	cmd.Flags().BoolVar(&opts.ShowSources, "sources", false, "show the knowledge breadcrumbs behind each reply")
	cmd.Flags().StringVar(&opts.GlamourStyle, "style", envutil.String("GLAMOUR_STYLE", "auto"), "markdown style (auto, dark, light, notty)")
	return cmd
}

func newClient(baseURL string) (*client.Client, error) {
	if baseURL == "" {
		return client.NewFromEnv()
	}
	return client.New(client.Options{BaseURL: baseURL})
}
