package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/fetch"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/logger"
)

const maxStreamURLs = 2

var (
	// ErrInvalidArgument is returned before any mirror is contacted.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnexpectedShape means the mirror returned valid JSON of the wrong shape.
	ErrUnexpectedShape = errors.New("unexpected upstream payload shape")
	// ErrUpstream means the mirror answered with an error document.
	ErrUpstream = errors.New("upstream reported an error")
)

// Resolver returns one validated JSON body for a provider-relative path.
type Resolver interface {
	Resolve(ctx context.Context, path string) ([]byte, error)
}

// Adapter builds resource paths for page operations and reshapes the
// resolved JSON into view models.
type Adapter struct {
	resolver Resolver
	log      logger.Logger
}

// New returns an Adapter backed by resolver.
func New(resolver Resolver, log logger.Logger) *Adapter {
	return &Adapter{resolver: resolver, log: logger.Ensure(log)}
}

// Video fetches metadata for one video.
func (a *Adapter) Video(ctx context.Context, id string) (domain.VideoPage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.VideoPage{}, fmt.Errorf("%w: video id is empty", ErrInvalidArgument)
	}

	var v upstreamVideo
	if err := a.fetch(ctx, VideoPath(id), &v); err != nil {
		return domain.VideoPage{}, err
	}
	if v.Error != "" {
		return domain.VideoPage{}, fmt.Errorf("%w: %s", ErrUpstream, v.Error)
	}

	page := domain.VideoPage{
		ID:              id,
		Title:           v.Title,
		Author:          v.Author,
		AuthorID:        v.AuthorID,
		AuthorIcon:      lastThumbnail(v.AuthorThumbnails),
		DescriptionHTML: SanitizeDescription(v.DescriptionHTML),
		StreamURLs:      streamURLs(v.FormatStreams),
		Recommended:     summarize(v.RecommendedVideos),
	}
	return page, nil
}

// Search runs a query; page is 1-based and values below 1 are clamped.
func (a *Adapter) Search(ctx context.Context, q string, page int) (domain.SearchPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return domain.SearchPage{}, fmt.Errorf("%w: search query is empty", ErrInvalidArgument)
	}
	if page < 1 {
		page = 1
	}

	var items []upstreamSearchItem
	if err := a.fetch(ctx, SearchPath(q, page), &items); err != nil {
		return domain.SearchPage{}, err
	}

	results := make([]domain.SearchItem, 0, len(items))
	for _, it := range items {
		item, ok := searchItem(it)
		if !ok {
			continue
		}
		results = append(results, item)
	}
	return domain.SearchPage{Query: q, Page: page, Results: results}, nil
}

// Channel fetches a channel profile and its latest uploads.
func (a *Adapter) Channel(ctx context.Context, id string) (domain.ChannelPage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ChannelPage{}, fmt.Errorf("%w: channel id is empty", ErrInvalidArgument)
	}

	var c upstreamChannel
	if err := a.fetch(ctx, ChannelPath(id), &c); err != nil {
		return domain.ChannelPage{}, err
	}
	if c.Error != "" {
		return domain.ChannelPage{}, fmt.Errorf("%w: %s", ErrUpstream, c.Error)
	}

	name := c.Author
	if name == "" {
		name = id
	}
	return domain.ChannelPage{
		ID:          id,
		Name:        name,
		IconURL:     lastThumbnail(c.AuthorThumbnails),
		ProfileHTML: SanitizeDescription(c.DescriptionHTML),
		Videos:      summarize(c.LatestVideos),
	}, nil
}

func (a *Adapter) fetch(ctx context.Context, path string, dst any) error {
	safePath := fetch.RedactQuery(path)
	body, err := a.resolver.Resolve(ctx, path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", safePath, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		a.log.WarnObj("upstream payload shape mismatch", "adapter_error", map[string]any{
			"path":  safePath,
			"error": err.Error(),
		})
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedShape, safePath, err)
	}
	return nil
}

// streamURLs keeps the last maxStreamURLs stream URLs, last one first.
func streamURLs(streams []formatStream) []string {
	out := make([]string, 0, maxStreamURLs)
	for i := len(streams) - 1; i >= 0 && len(out) < maxStreamURLs; i-- {
		if u := strings.TrimSpace(streams[i].URL); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func summarize(videos []upstreamVideo) []domain.VideoSummary {
	out := make([]domain.VideoSummary, 0, len(videos))
	for _, v := range videos {
		if v.VideoID == "" {
			continue
		}
		out = append(out, domain.VideoSummary{
			ID:        v.VideoID,
			Title:     v.Title,
			Author:    v.Author,
			AuthorID:  v.AuthorID,
			Thumbnail: videoThumbnail(v.VideoThumbnails),
			Length:    formatLength(v.LengthSeconds),
		})
	}
	return out
}

func searchItem(it upstreamSearchItem) (domain.SearchItem, bool) {
	item := domain.SearchItem{
		Type:     it.Type,
		Title:    it.Title,
		Author:   it.Author,
		AuthorID: it.AuthorID,
	}
	switch it.Type {
	case "video", "":
		if it.VideoID == "" {
			return domain.SearchItem{}, false
		}
		item.Type = "video"
		item.ID = it.VideoID
		item.Thumbnail = videoThumbnail(it.VideoThumbnails)
		item.Length = formatLength(it.LengthSeconds)
	case "channel":
		if it.AuthorID == "" {
			return domain.SearchItem{}, false
		}
		item.ID = it.AuthorID
		item.Title = it.Author
		item.Thumbnail = lastThumbnail(it.AuthorThumbnails)
	case "playlist":
		if it.PlaylistID == "" {
			return domain.SearchItem{}, false
		}
		item.ID = it.PlaylistID
		item.Thumbnail = absoluteURL(it.PlaylistThumbnail)
		if it.VideoCount > 0 {
			item.Length = fmt.Sprintf("%d videos", it.VideoCount)
		}
	default:
		return domain.SearchItem{}, false
	}
	return item, true
}
