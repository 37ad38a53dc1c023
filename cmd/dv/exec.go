package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/server"
	"github.com/traveller-vtt/dv/pkg/core"
)

// NewExecCommand creates the exec command
func NewExecCommand() *cobra.Command {
	var (
		player    string
		gm        bool
		selected  []string
		serverURL string
	)

	cmd := &cobra.Command{
		Use:   "exec -- <command line>",
		Short: "Run one chat command",
		Long: `Run one chat command as a player, against the configured store or a running
server, and print the result and the chat it produced.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := core.ChatMessage{
				Type:     core.MessageTypeAPI,
				PlayerID: player,
				Content:  strings.Join(args, " "),
				Selected: selected,
			}

			var (
				resp server.Response
				err  error
			)
			if serverURL != "" {
				resp, err = execRemote(cmd.Context(), serverURL, msg)
			} else {
				resp, err = execLocal(cmd.Context(), msg, gm)
			}
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player id to run the command as")
	cmd.Flags().BoolVar(&gm, "gm", false, "Register the player as a GM first (local store only)")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "Selected token ids")
	cmd.Flags().StringVar(&serverURL, "server", "", "Send the command to a running server, e.g. ws://localhost:8080/ws")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func execLocal(ctx context.Context, msg core.ChatMessage, gm bool) (server.Response, error) {
	a, err := newApp(ctx, consoleWriter(), "dv_exec", false)
	if err != nil {
		return server.Response{}, err
	}
	defer a.Close()

	if gm {
		if err := a.store.PutPlayer(ctx, core.Player{ID: msg.PlayerID, DisplayName: msg.PlayerID, IsGM: true}); err != nil {
			return server.Response{}, fmt.Errorf("failed to register GM: %w", err)
		}
	}

	srv := server.New(config.GetServerConfig(), a.d, a.outbox, a.log)
	return srv.Handle(ctx, msg), nil
}

func execRemote(ctx context.Context, url string, msg core.ChatMessage) (server.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	c, err := server.Dial(ctx, url, zerolog.Nop())
	if err != nil {
		return server.Response{}, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer c.Close()
	return c.Send(ctx, msg)
}

func printResponse(w io.Writer, resp server.Response) error {
	if resp.Error != "" {
		fmt.Fprintf(w, "error: %s\n", resp.Error)
	}
	if resp.Result != nil {
		data, err := json.MarshalIndent(resp.Result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintf(w, "%s\n", data)
	}
	for _, m := range resp.Chat {
		to := "everyone"
		if m.Target != "" {
			to = m.Target
		}
		fmt.Fprintf(w, "[%s -> %s] %s\n", m.Delivery, to, m.HTML)
	}
	return nil
}
