package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stories/internal/model"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var dropsOnly bool

	cmd := &cobra.Command{
		Use:   "validate [file|url]",
		Short: "Validate a raw feed and report dropped records",
		Long: `Validate reads a raw feed (the configured source, or the file or URL
given as an argument), runs it through the validator, and prints the users
that survive followed by every dropped user and story with the reason.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override := ""
			if len(args) == 1 {
				override = args[0]
			}
			src, err := ctx.source(override)
			if err != nil {
				return err
			}
			raw, err := src.FetchRawUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}

			users, drops := model.ValidateReport(raw)
			out := cmd.OutOrStdout()

			if !dropsOnly {
				fmt.Fprintln(out, renderUsers(users))
			}
			if len(drops) > 0 {
				fmt.Fprintln(out, renderDrops(drops))
			}
			fmt.Fprintf(out, "%s: %d raw users, %d kept, %d stories kept, %d dropped records\n",
				src.Name(), len(raw), len(users), storyCount(users), len(drops))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropsOnly, "drops", false, "Only list dropped records")
	return cmd
}

func renderUsers(users []model.User) string {
	rows := make([][]string, 0, len(users))
	for i, u := range users {
		avatar := ""
		if u.AvatarURL != nil {
			avatar = u.AvatarURL.String()
		}
		rows = append(rows, []string{strconv.Itoa(i), u.ID, u.Name, strconv.Itoa(u.StoryCount()), avatar})
	}
	return renderTable(
		[]string{"#", "User ID", "Name", "Stories", "Avatar"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderDrops(drops []model.Drop) string {
	rows := make([][]string, 0, len(drops))
	for _, d := range drops {
		story := ""
		if d.StoryIndex >= 0 {
			story = strconv.Itoa(d.StoryIndex)
		}
		rows = append(rows, []string{string(d.Kind), strconv.Itoa(d.Index), story, d.UserID, d.StoryID, string(d.Reason)})
	}
	return renderTable(
		[]string{"Dropped", "User #", "Story #", "User ID", "Story ID", "Reason"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

func storyCount(users []model.User) int {
	n := 0
	for _, u := range users {
		n += u.StoryCount()
	}
	return n
}
