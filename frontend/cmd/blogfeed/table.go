package main

import (
	"io"
	"strconv"
	"time"

	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/olekukonko/tablewriter"
)

const titleWidth = 40

func writePostsTable(w io.Writer, posts []domain.Post) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Id", "Title", "Author", "Created", "Likes", "Comments"})
	table.SetAutoWrapText(false)

	for _, p := range posts {
		table.Append([]string{
			p.Id,
			truncate(p.Title, titleWidth),
			p.OwnerUsername,
			p.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(len(p.Likes)),
			strconv.Itoa(len(p.Comments)),
		})
	}
	table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
