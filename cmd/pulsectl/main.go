package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "pulse_ledger/internal/cli"
	"pulse_ledger/internal/domain"

	"github.com/spf13/cobra"
)

type globals struct {
	apiBase string
	token   string
	network string
}

func main() {
	g := &globals{}

	root := &cobra.Command{
		Use:          "pulsectl",
		Short:        "PULSE ledger operator CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.apiBase, "api", envOr("PULSE_API_URL", "http://127.0.0.1:8080"), "ledger API base URL")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("PULSE_TOKEN"), "bearer token (see issue_token)")
	root.PersistentFlags().StringVarP(&g.network, "network", "n", envOr("PULSE_NETWORK", string(domain.NetworkBase)), "network: base or stacks")

	root.AddCommand(
		newNetworksCmd(g),
		newStatsCmd(g),
		newGateCmd(g),
		newProfileCmd(g),
		newEventsCmd(g),
		newQuestCmd(g),
		newComboCmd(g),
		newPauseCmd(g),
		newUnpauseCmd(g),
		newTransferCmd(g),
	)

	if err := root.Execute(); err != nil {
		printError(fmt.Sprintf("error: %v", err))
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (g *globals) client() *cl.Client {
	return cl.NewClient(strings.TrimSpace(g.apiBase), g.token)
}

func (g *globals) net() (domain.Network, error) {
	n := domain.Network(strings.ToLower(g.network))
	if !n.Valid() {
		return "", fmt.Errorf("unknown network %q", g.network)
	}
	return n, nil
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newNetworksCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List served networks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			nets, err := g.client().Networks(ctx)
			if err != nil {
				return err
			}
			for _, n := range nets {
				printInfo(string(n))
			}
			return nil
		},
	}
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show global stats of a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			s, err := g.client().Stats(ctx, n)
			if err != nil {
				return err
			}
			renderStats(n, s)
			return nil
		},
	}
}

func newGateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "gate",
		Short: "Show owner and pause state",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			gate, err := g.client().Gate(ctx, n)
			if err != nil {
				return err
			}
			renderGate(n, gate)
			return nil
		},
	}
}

func newProfileCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <account>",
		Short: "Show a profile and today's quests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			c := g.client()
			p, err := c.Profile(ctx, n, args[0])
			if err != nil {
				return err
			}
			done, err := c.CompletedQuests(ctx, n, args[0])
			if err != nil {
				return err
			}
			renderProfile(p, done)
			return nil
		},
	}
}

func newEventsCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events <account>",
		Short: "List recent notifications of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			events, err := g.client().Events(ctx, n, args[0], limit)
			if err != nil {
				return err
			}
			renderEvents(events)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max events")
	return cmd
}

// quest names accepted by the API and the argument each one takes
var questArgs = map[string]string{
	"checkin":    "",
	"relay":      "",
	"atmosphere": "weather_code",
	"nudge":      "target",
	"message":    "content",
	"predict":    "level",
}

func newQuestCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "quest <checkin|relay|atmosphere|nudge|message|predict> [value]",
		Short: "Complete a quest as the token's account",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			field, ok := questArgs[args[0]]
			if !ok {
				return fmt.Errorf("unknown quest %q", args[0])
			}

			var body map[string]any
			if field != "" {
				if len(args) < 2 {
					return fmt.Errorf("quest %s needs a %s", args[0], field)
				}
				body = map[string]any{field: args[1]}
				if field == "weather_code" || field == "level" {
					v, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("%s must be a number", field)
					}
					body[field] = v
				}
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()
			rec, err := g.client().Quest(ctx, n, args[0], body)
			if err != nil {
				return err
			}
			renderReceipt(args[0], rec)
			return nil
		},
	}
}

func newComboCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "combo",
		Short: "Claim today's combo bonus",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			rec, err := g.client().ClaimCombo(ctx, n)
			if err != nil {
				return err
			}
			renderReceipt("combo", rec)
			return nil
		},
	}
}

func newPauseCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause all quest writes (owner only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := g.client().Pause(ctx, n); err != nil {
				return err
			}
			printWarn(fmt.Sprintf("%s paused", n))
			return nil
		},
	}
}

func newUnpauseCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "unpause",
		Short: "Resume quest writes (owner only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := g.client().Unpause(ctx, n); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s unpaused", n))
			return nil
		},
	}
}

func newTransferCmd(g *globals) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "transfer-ownership <new-owner>",
		Short: "Hand the owner role to another account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.net()
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(fmt.Sprintf("Transfer %s ownership to %s?", n, args[0]))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Aborted.")
					return nil
				}
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := g.client().TransferOwnership(ctx, n, args[0]); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s owner is now %s", n, args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
