package main

import (
	"fmt"

	"github.com/itchan-dev/blogfeed/frontend/internal/composer"
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	"github.com/spf13/cobra"
)

var draft composer.Draft

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish a post",
	RunE:  runPost,
}

func init() {
	postCmd.Flags().StringVarP(&draft.Title, "title", "t", "", "post title")
	postCmd.Flags().StringVarP(&draft.Body, "body", "b", "", "post body (markdown)")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	backend, release, err := setup.NewBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	c := composer.New(backend, composer.Limits{
		TitleMaxLen: cfg.Public.PostTitleMaxLen,
		BodyMaxLen:  cfg.Public.PostBodyMaxLen,
	})
	id, err := c.Submit(ctx, &draft)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
