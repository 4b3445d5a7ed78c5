package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/app"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/chat"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	var (
		remote  bool
		baseURL string
		sources bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and exit",
		Long: `Answer one question and print the reply.

By default the question is answered in-process with the configured knowledge
document and language model. With --remote it is sent to a running gateway.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			var (
				reply api.ChatReply
				err   error
			)
			if remote {
				reply, err = askRemote(cmd.Context(), baseURL, question)
			} else {
				reply, err = askLocal(cmd.Context(), root, question)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Reply)
			if sources && len(reply.Sources) > 0 {
				fmt.Fprintf(out, "\nSources: %s\n", strings.Join(reply.Sources, "; "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask a running gateway instead of answering in-process")
	cmd.Flags().StringVar(&baseURL, "url", "", "gateway base URL for --remote")
	cmd.Flags().BoolVar(&sources, "sources", false, "print the knowledge breadcrumbs behind the reply")
	return cmd
}

func askRemote(ctx context.Context, baseURL, question string) (api.ChatReply, error) {
	c, err := newClient(baseURL)
	if err != nil {
		return api.ChatReply{}, err
	}
	return c.Chat(ctx, question, nil)
}

func askLocal(ctx context.Context, root *rootOptions, question string) (api.ChatReply, error) {
	cfg, err := root.load()
	if err != nil {
		return api.ChatReply{}, err
	}
	if root.logMode == "" {
		cfg.Env = "production"
	}
	log, err := root.logger(cfg)
	if err != nil {
		return api.ChatReply{}, err
	}
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		return api.ChatReply{}, err
	}
	defer a.Close()

	r, err := a.Chat.Reply(ctx, chat.Request{Message: question})
	if err != nil {
		return api.ChatReply{}, err
	}
	return api.ChatReply{Reply: r.Text, Sources: r.Sources}, nil
}
