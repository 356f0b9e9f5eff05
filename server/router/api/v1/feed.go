package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/vishalnagda1/outlook-mail-responder/store"
)

const draftsFeedLimit = 50

// DraftsFeed serves the most recent drafted replies as RSS.
func (s *APIV1Service) DraftsFeed(c echo.Context) error {
	ctx := c.Request().Context()

	limit := draftsFeedLimit
	status := store.EmailLogStatusDrafted
	logs, err := s.Store.ListEmailLogs(ctx, &store.FindEmailLog{
		Status: &status,
		Limit:  &limit,
	})
	if err != nil {
		return internalError(c, err)
	}

	baseURL := strings.TrimRight(s.Profile.InstanceURL, "/")
	feed := &feeds.Feed{
		Title:       "Drafted replies",
		Link:        &feeds.Link{Href: baseURL + "/feed/drafts.rss"},
		Description: "Replies drafted by the mail responder",
		Created:     time.Now(),
	}

	for _, log := range logs {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          log.UID,
			Title:       fmt.Sprintf("Re: %s", log.Subject),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/v1/inbox/logs?limit=1&offset=0#%s", baseURL, log.UID)},
			Description: log.DraftBody,
			Author:      &feeds.Author{Name: log.Sender, Email: log.SenderAddress},
			Created:     time.Unix(log.CreatedTs, 0),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return internalError(c, err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
