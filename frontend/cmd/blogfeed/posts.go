package main

import (
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/spf13/cobra"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Print the current feed",
	RunE:  runPosts,
}

func init() {
	rootCmd.AddCommand(postsCmd)
}

func runPosts(cmd *cobra.Command, args []string) error {
	backend, release, err := setup.NewBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer release()

	posts, err := backend.ListPosts(cmd.Context())
	if err != nil {
		return err
	}
	writePostsTable(cmd.OutOrStdout(), feed.Fold(nil, feed.NewSnapshot(posts)))
	return nil
}
