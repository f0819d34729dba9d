package web

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/util"
)

// buildURL prefixes path with the public URL, or the local HTTP address when none is set
func buildURL(conf *util.AppConfig, path string) string {
	if conf.Conf.PublicURL != "" {
		return strings.TrimRight(conf.Conf.PublicURL, "/") + path
	}
	return fmt.Sprintf("http://%s:%d%s", conf.Conf.Host, conf.Conf.HttpPort, path)
}

func author(a domain.Author) *feeds.Author {
	return &feeds.Author{Name: a.DisplayName()}
}

// GetThreadRSS renders the first page of a thread's replies, oldest first,
// with the root post excluded.
func GetThreadRSS(ctx context.Context, src content.Source, conf *util.AppConfig, address string) (string, error) {
	t, err := src.FetchThread(ctx, address)
	if err != nil {
		return "", fmt.Errorf("fetch thread %s: %w", address, err)
	}
	page, err := src.FetchRepliesPaginated(ctx, address, conf.Conf.PageSize, "")
	if err != nil {
		return "", fmt.Errorf("fetch replies of %s: %w", address, err)
	}

	link := buildURL(conf, "/feed/threads/"+address)
	feed := &feeds.Feed{
		Title:       t.Title,
		Link:        &feeds.Link{Href: link},
		Description: t.Summary,
		Author:      author(t.Author),
		Created:     t.RootPost.Timestamp,
	}

	for _, r := range thread.PrepareReplies(page.Items, t.RootPost.Id) {
		text := util.FirstLine(util.HTMLToText(r.Content))
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          r.Id,
			Title:       util.TruncateWidth(text, 80),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s#%s", link, r.Id)},
			Description: text,
			Content:     util.SanitizeHTML(r.Content),
			Author:      author(r.Author),
			Created:     r.CreatedAt,
		})
	}
	return feed.ToRss()
}

// GetCommunityRSS renders the first page of a community's threads
func GetCommunityRSS(ctx context.Context, src content.Source, conf *util.AppConfig, address string) (string, error) {
	page, err := src.FetchThreads(ctx, address, conf.Conf.PageSize, "")
	if err != nil {
		return "", fmt.Errorf("fetch threads of %s: %w", address, err)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s threads in %s", util.Name, address),
		Link:        &feeds.Link{Href: buildURL(conf, "/feed/communities/"+address)},
		Description: "Latest threads of the community",
		Created:     time.Now(),
	}

	for _, t := range page.Items {
		item := &feeds.Item{
			Id:          t.Address,
			Title:       t.Title,
			Link:        &feeds.Link{Href: buildURL(conf, "/feed/threads/"+t.Address)},
			Description: t.Summary,
			Content:     util.SanitizeHTML(t.RootPost.Content),
			Author:      author(t.Author),
			Created:     t.RootPost.Timestamp,
		}
		if len(t.Tags) > 0 {
			item.Description += " #" + strings.Join(t.Tags, " #")
		}
		feed.Items = append(feed.Items, item)
	}
	return feed.ToRss()
}
