package adapter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/fetch"
)

// fakeResolver returns canned bodies keyed by path.
type fakeResolver struct {
	bodies map[string]string
	err    error
	paths  []string
}

func (f *fakeResolver) Resolve(_ context.Context, path string) ([]byte, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[path]
	if !ok {
		return nil, errors.New("unexpected path " + path)
	}
	return []byte(body), nil
}

const videoJSON = `{
  "title": "Clip",
  "videoId": "abc",
  "author": "Uploader",
  "authorId": "UC123",
  "descriptionHtml": "line one\nsee <a href=\"https://www.youtube.com/watch?v=zzz\">this</a>",
  "authorThumbnails": [{"url":"//yt3.example/s32"},{"url":"https://yt3.example/s176"}],
  "formatStreams": [{"url":"https://m.example/360"},{"url":"https://m.example/480"},{"url":"https://m.example/720"}],
  "recommendedVideos": [
    {"videoId":"r1","title":"Rec 1","author":"A","authorId":"UCa","lengthSeconds":75,
     "videoThumbnails":[{"quality":"high","url":"https://i.example/hq"},{"quality":"medium","url":"https://i.example/mq"}]},
    {"title":"missing id"}
  ]
}`

func TestVideoReshapesPayload(t *testing.T) {
	res := &fakeResolver{bodies: map[string]string{"api/v1/videos/abc": videoJSON}}
	page, err := New(res, nil).Video(context.Background(), " abc ")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}

	if page.ID != "abc" || page.Title != "Clip" || page.Author != "Uploader" || page.AuthorID != "UC123" {
		t.Fatalf("unexpected identity fields %+v", page)
	}
	if page.AuthorIcon != "https://yt3.example/s176" {
		t.Fatalf("author icon = %q", page.AuthorIcon)
	}
	if len(page.StreamURLs) != 2 || page.StreamURLs[0] != "https://m.example/720" || page.StreamURLs[1] != "https://m.example/480" {
		t.Fatalf("unexpected stream urls %v", page.StreamURLs)
	}
	if len(page.Recommended) != 1 {
		t.Fatalf("expected 1 recommended video, got %d", len(page.Recommended))
	}
	rec := page.Recommended[0]
	if rec.ID != "r1" || rec.Thumbnail != "https://i.example/mq" || rec.Length != "1:15" {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if !strings.Contains(page.DescriptionHTML, "<br/>") {
		t.Fatalf("expected newline to become <br>, got %q", page.DescriptionHTML)
	}
	if !strings.Contains(page.DescriptionHTML, `href="/watch?v=zzz"`) {
		t.Fatalf("expected local watch link, got %q", page.DescriptionHTML)
	}
}

func TestVideoToleratesEmptyObject(t *testing.T) {
	res := &fakeResolver{bodies: map[string]string{"api/v1/videos/abc": `{}`}}
	page, err := New(res, nil).Video(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if page.AuthorIcon != "" || len(page.StreamURLs) != 0 || len(page.Recommended) != 0 {
		t.Fatalf("expected zero values, got %+v", page)
	}
}

func TestVideoRejectsWrongShape(t *testing.T) {
	res := &fakeResolver{bodies: map[string]string{"api/v1/videos/abc": `[1,2,3]`}}
	_, err := New(res, nil).Video(context.Background(), "abc")
	if !errors.Is(err, ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestVideoReportsUpstreamError(t *testing.T) {
	res := &fakeResolver{bodies: map[string]string{"api/v1/videos/abc": `{"error":"This video is unavailable"}`}}
	_, err := New(res, nil).Video(context.Background(), "abc")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestVideoEmptyIDSkipsResolve(t *testing.T) {
	res := &fakeResolver{}
	_, err := New(res, nil).Video(context.Background(), "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(res.paths) != 0 {
		t.Fatalf("resolver must not be called")
	}
}

func TestVideoPropagatesResolveFailure(t *testing.T) {
	res := &fakeResolver{err: &fetch.ResolveError{Path: "p", Reason: fetch.ErrExhausted}}
	_, err := New(res, nil).Video(context.Background(), "abc")
	if !errors.Is(err, fetch.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSearchMapsItemTypes(t *testing.T) {
	body := `[
	  {"type":"video","videoId":"v1","title":"Video","author":"A","authorId":"UCa","lengthSeconds":3725,
	   "videoThumbnails":[{"quality":"default","url":"https://i.example/d"}]},
	  {"type":"channel","author":"Chan","authorId":"UCc","authorThumbnails":[{"url":"//c.example/1"}]},
	  {"type":"playlist","playlistId":"PL1","title":"List","videoCount":12,"playlistThumbnail":"https://p.example/t"},
	  {"type":"category","title":"skip me"},
	  {"type":"video","title":"no id"}
	]`
	res := &fakeResolver{bodies: map[string]string{"api/v1/search?q=go+lang&page=2": body}}

	page, err := New(res, nil).Search(context.Background(), "go lang", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Query != "go lang" || page.Page != 2 {
		t.Fatalf("unexpected query/page %q %d", page.Query, page.Page)
	}
	if len(page.Results) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(page.Results), page.Results)
	}
	if r := page.Results[0]; r.ID != "v1" || r.Length != "1:02:05" || r.Thumbnail != "https://i.example/d" {
		t.Fatalf("unexpected video item %+v", r)
	}
	if r := page.Results[1]; r.Type != "channel" || r.ID != "UCc" || r.Title != "Chan" || r.Thumbnail != "https://c.example/1" {
		t.Fatalf("unexpected channel item %+v", r)
	}
	if r := page.Results[2]; r.Type != "playlist" || r.ID != "PL1" || r.Length != "12 videos" {
		t.Fatalf("unexpected playlist item %+v", r)
	}
}

func TestSearchClampsPageAndRejectsObject(t *testing.T) {
	res := &fakeResolver{bodies: map[string]string{"api/v1/search?q=x&page=1": `{"error":"oops"}`}}
	_, err := New(res, nil).Search(context.Background(), "x", 0)
	if !errors.Is(err, ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
	if res.paths[0] != "api/v1/search?q=x&page=1" {
		t.Fatalf("unexpected path %q", res.paths[0])
	}
}

func TestChannelReshapesPayload(t *testing.T) {
	body := `{
	  "author": "Chan",
	  "authorId": "UCc",
	  "descriptionHtml": "<p onclick=\"x()\">hi</p><script>alert(1)</script>",
	  "authorThumbnails": [{"url":"https://c.example/32"},{"url":"https://c.example/512"}],
	  "latestVideos": [{"videoId":"l1","title":"Latest"}]
	}`
	res := &fakeResolver{bodies: map[string]string{"api/v1/channels/UCc": body}}

	page, err := New(res, nil).Channel(context.Background(), "UCc")
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if page.Name != "Chan" || page.IconURL != "https://c.example/512" {
		t.Fatalf("unexpected channel %+v", page)
	}
	if strings.Contains(page.ProfileHTML, "script") || strings.Contains(page.ProfileHTML, "onclick") {
		t.Fatalf("profile not sanitized: %q", page.ProfileHTML)
	}
	if len(page.Videos) != 1 || page.Videos[0].ID != "l1" {
		t.Fatalf("unexpected videos %+v", page.Videos)
	}
}

func TestChannelFallsBackToIDForName(t *testing.T) {
	res := &fakeResolver{bodies: map[string]string{"api/v1/channels/UCx": `{}`}}
	page, err := New(res, nil).Channel(context.Background(), "UCx")
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if page.Name != "UCx" {
		t.Fatalf("expected id as name, got %q", page.Name)
	}
}

func TestSearchFailureOmitsQuery(t *testing.T) {
	res := &fakeResolver{err: &fetch.ResolveError{Path: "api/v1/search", Reason: fetch.ErrExhausted}}
	_, err := New(res, nil).Search(context.Background(), "private words", 1)
	if !errors.Is(err, fetch.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if strings.Contains(err.Error(), "private") {
		t.Fatalf("error leaks query: %v", err)
	}
	if res.paths[0] != "api/v1/search?q=private+words&page=1" {
		t.Fatalf("resolver must still receive the full path, got %q", res.paths[0])
	}
}
