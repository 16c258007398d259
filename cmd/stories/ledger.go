package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/stories/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or reset viewed and liked stories",
	}
	cmd.AddCommand(newLedgerShowCommand(ctx))
	cmd.AddCommand(newLedgerClearCommand(ctx))
	return cmd
}

func newLedgerShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List viewed and liked stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			slot, st, closer, err := ctx.openSlot(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()

			led := ledger.New(slot, cfg.Ledger.Key, nil)
			viewed, liked := led.Viewed(), led.Liked()
			out := cmd.OutOrStdout()

			likedSet := make(map[ledger.Key]bool, len(liked))
			for _, k := range liked {
				likedSet[k] = true
			}
			viewedSet := make(map[ledger.Key]bool, len(viewed))
			for _, k := range viewed {
				viewedSet[k] = true
			}

			// Union of both sets, in viewed order then liked-only keys.
			keys := append([]ledger.Key(nil), viewed...)
			for _, k := range liked {
				if !viewedSet[k] {
					keys = append(keys, k)
				}
			}
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k.UserID, k.StoryID, yesNo(viewedSet[k]), yesNo(likedSet[k])})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"User ID", "Story ID", "Viewed", "Liked"}, rows, nil))
			}
			fmt.Fprintf(out, "%d viewed, %d liked (%s ledger %q)\n", len(viewed), len(liked), cfg.Ledger.Backend, cfg.Ledger.Key)

			if st != nil {
				slots, err := st.Slots()
				if err != nil {
					return err
				}
				for _, s := range slots {
					fmt.Fprintf(out, "slot %s: %s, updated %s\n", s.Key, humanize.Bytes(uint64(s.Size)), humanize.Time(s.UpdatedAt))
				}
			}
			return nil
		},
	}
}

func newLedgerClearCommand(ctx *commandContext) *cobra.Command {
	var viewed, liked bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget viewed and/or liked stories (both when no flag is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !viewed && !liked {
				viewed, liked = true, true
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			slot, _, closer, err := ctx.openSlot(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()

			led := ledger.New(slot, cfg.Ledger.Key, nil)
			out := cmd.OutOrStdout()
			if viewed {
				n := len(led.Viewed())
				led.ClearViewed()
				fmt.Fprintf(out, "cleared %d viewed\n", n)
			}
			if liked {
				n := len(led.Liked())
				led.ClearLiked()
				fmt.Fprintf(out, "cleared %d liked\n", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&viewed, "viewed", false, "Clear viewed stories")
	cmd.Flags().BoolVar(&liked, "liked", false, "Clear liked stories")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
