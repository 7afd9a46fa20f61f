package cmd

import (
	"errors"
	"fmt"

	"instavibe/api"
	"instavibe/lib"
	"instavibe/term"

	"github.com/spf13/cobra"
)

var rmYes bool

var rmCmd = &cobra.Command{
	Use:     "rm [id...]",
	Aliases: []string{"delete"},
	Short:   "Delete posts",
	Long:    `Delete posts by id. Without ids, pick a post from the feed.`,
	Run:     rmPosts,
}

func init() {
	RootCmd.AddCommand(rmCmd)
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Skip the confirmation")
}

func rmPosts(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	feed := lib.NewFeed(api.Client, aliases())
	defer feed.Close()

	ids := args
	if len(ids) == 0 {
		if !isInteractive() {
			term.OutputErrorAndExit("No post ids given")
		}

		term.StartSpinner("")
		if err := feed.Refresh(ctx); err != nil {
			term.OutputErrorAndExit("%v", err)
		}
		term.StopSpinner()

		entries := feed.Entries()
		if len(entries) == 0 {
			fmt.Println("🤷‍♂️ " + lib.MsgNoPosts)
			return
		}

		opts := make([]string, 0, len(entries))
		for _, e := range entries {
			opts = append(opts, fmt.Sprintf("%s · %s (%s)", e.DisplayName, truncate(e.Post.Caption, 40), e.Posted))
		}

		idx, err := term.SelectIndex("Select a post to delete:", opts)
		if err != nil {
			term.OutputErrorAndExit("Error selecting post: %v", err)
		}
		ids = []string{entries[idx].Post.Id}
	}

	if !rmYes {
		label := "this post"
		if len(ids) > 1 {
			label = fmt.Sprintf("%d posts", len(ids))
		}
		ok, err := term.ConfirmYesNo("Delete %s?", label)
		if err != nil {
			term.OutputErrorAndExit("Error getting confirmation: %v", err)
		}
		if !ok {
			fmt.Println("🤷‍♂️ No posts deleted")
			return
		}
	}

	failed := 0
	for _, id := range ids {
		term.StartSpinner("🗑  Deleting " + id + "...")
		err := feed.Delete(ctx, id)
		term.StopSpinner()

		if err != nil {
			failed++
			var feedErr *lib.FeedError
			if errors.As(err, &feedErr) && feedErr.ApiErr != nil && feedErr.ApiErr.Msg != "" {
				term.OutputSimpleError("%s %s: %s", lib.MsgFailedToDelete, id, feedErr.ApiErr.Msg)
			} else {
				term.OutputSimpleError("%s %s", lib.MsgFailedToDelete, id)
			}
			continue
		}
		fmt.Println("✅ Deleted post " + id)
	}

	if failed > 0 {
		term.OutputErrorAndExit("%d of %d deletes failed", failed, len(ids))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
