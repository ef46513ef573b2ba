package main

import (
	"fmt"
	"io"

	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/spf13/cobra"
)

const clearScreen = "\033[H\033[2J"

var watchClear bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the feed as events arrive",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchClear, "clear", false, "clear the terminal before every redraw")
	rootCmd.AddCommand(watchCmd)
}

func printer(w io.Writer, redraw bool) func([]domain.Post) {
	return func(posts []domain.Post) {
		if redraw {
			fmt.Fprint(w, clearScreen)
		}
		writePostsTable(w, posts)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backend, release, err := setup.NewBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	ctrl := feedctl.New(backend, feedctl.WithOnChange(printer(cmd.OutOrStdout(), watchClear)))
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Close()

	<-ctx.Done()
	return nil
}
