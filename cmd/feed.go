package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"instavibe/api"
	"instavibe/lib"
	"instavibe/term"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var feedSearch string
var feedCheckImages bool
var feedJson bool

var feedCmd = &cobra.Command{
	Use:     "feed",
	Aliases: []string{"f", "ls"},
	Short:   "List posts, newest first",
	Args:    cobra.NoArgs,
	Run:     listFeed,
}

func init() {
	RootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringVarP(&feedSearch, "search", "s", "", "Fuzzy filter on username or caption")
	feedCmd.Flags().BoolVar(&feedCheckImages, "check-images", false, "Check every image loads and show its size")
	feedCmd.Flags().BoolVar(&feedJson, "json", false, "Output posts as json")
}

// unknown times stay empty rather than printing year one
func jsonTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

type feedJsonEntry struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Caption     string `json:"caption"`
	ImageUrl    string `json:"imageUrl"`
	ImageBroken bool   `json:"imageBroken,omitempty"`
	UploadedAt  string `json:"uploadedAt,omitempty"`
}

func listFeed(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	feed := lib.NewFeed(api.Client, aliases())
	defer feed.Close()

	term.StartSpinner("")
	err := feed.Refresh(ctx)
	if err != nil {
		var feedErr *lib.FeedError
		if errors.As(err, &feedErr) && feedErr.ApiErr != nil {
			term.OutputErrorAndExit("%s: %s", feedErr.Msg, feedErr.ApiErr.Error())
		}
		term.OutputErrorAndExit("%v", err)
	}

	if feedCheckImages {
		feed.ProbeImages(ctx)
	}
	term.StopSpinner()

	entries := feed.Search(feedSearch)

	if feedJson {
		out := make([]feedJsonEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, feedJsonEntry{
				Id:          e.Post.Id,
				Username:    e.Post.Username,
				DisplayName: e.DisplayName,
				Caption:     e.Post.Caption,
				ImageUrl:    e.ImageUrl,
				ImageBroken: e.ImageBroken,
				UploadedAt:  jsonTime(e.Post.UploadedAt.Time),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			term.OutputErrorAndExit("Error encoding posts: %v", err)
		}
		return
	}

	if len(entries) == 0 {
		if feedSearch != "" {
			fmt.Println("🤷‍♂️ No posts match " + strconv.Quote(feedSearch))
			return
		}
		fmt.Println("🤷‍♂️ " + lib.MsgNoPosts)
		fmt.Println()
		term.PrintCmds("", "post")
		return
	}

	captionWidth := max(term.GetTerminalWidth()/3, 20)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "User", "Caption", "Posted", "Image", "Id"})

	for i, e := range entries {
		image := e.ImageUrl
		if e.ImageBroken {
			image = color.New(term.ColorHiRed).Sprint("failed to load")
		} else if e.ImageInfo != "" {
			image = e.ImageInfo
		}

		table.Append([]string{
			strconv.Itoa(i + 1),
			color.New(color.Bold).Sprint(e.DisplayName),
			term.Wrap(e.Post.Caption, captionWidth),
			e.Posted,
			image,
			e.Post.Id,
		})
	}

	table.Render()

	fmt.Println(term.GetDivisionLine())
	fmt.Println(feedFooter(len(entries), len(feed.Posts()), feedSearch))
}

func feedFooter(shown, total int, search string) string {
	if search != "" {
		return fmt.Sprintf("%d of %d posts match %s", shown, total, strconv.Quote(search))
	}
	if total == 1 {
		return "1 post"
	}
	return fmt.Sprintf("%d posts", total)
}
