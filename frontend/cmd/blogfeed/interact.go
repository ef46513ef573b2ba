package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	"github.com/spf13/cobra"
)

var likeCmd = &cobra.Command{
	Use:   "like POST_ID",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withViewer(cmd.Context(), func(ctx context.Context, v *feedctl.Viewer) error {
			err := v.Like(ctx, args[0])
			if errors.Is(err, feedctl.ErrCannotLike) {
				return errors.New(v.Error())
			}
			return err
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment POST_ID TEXT...",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withViewer(cmd.Context(), func(ctx context.Context, v *feedctl.Viewer) error {
			return v.Comment(ctx, args[0], strings.Join(args[1:], " "))
		})
	},
}

func init() {
	rootCmd.AddCommand(likeCmd, commentCmd)
}

// withViewer loads the feed so the local checks have state to run against,
// then calls fn as the configured identity.
func withViewer(ctx context.Context, fn func(ctx context.Context, v *feedctl.Viewer) error) error {
	ctx, err := signedIn(ctx)
	if err != nil {
		return err
	}
	backend, release, err := setup.NewBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	ctrl := feedctl.New(backend)
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}
	defer ctrl.Close()

	return fn(ctx, feedctl.NewViewer(ctrl, cfg.Public.LikePreviewAccumulate))
}
