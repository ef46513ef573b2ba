package handler

import (
	"net/http"

	"github.com/itchan-dev/blogfeed/shared/utils"
)

type healthResponse struct {
	Status  string `json:"status"`
	Posts   int    `json:"posts"`
	Viewers int    `json:"viewers"`
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Posts: len(h.Feed.Posts()), Viewers: h.Viewers.Len()})
}
