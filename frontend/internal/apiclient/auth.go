package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

// CurrentUserInfo asks the managed auth service who owns the access token.
func (c *APIClient) CurrentUserInfo(ctx context.Context) (domain.Session, error) {
	resp, err := c.do(ctx, "GET", "/v1/auth/userinfo", nil)
	if err != nil {
		return domain.Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Session{}, responseError(resp, "get user info")
	}
	var info api.UserInfoResponse
	if err := utils.Decode(resp.Body, &info); err != nil {
		return domain.Session{}, fmt.Errorf("cannot decode user info: %w", err)
	}
	return domain.Session{UserId: info.Id, Username: info.Username, ExpiresAt: info.ExpiresAt}, nil
}
