package youtube

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// VideoMetadata 上传到 YouTube 的视频元数据
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	Privacy     string // public | unlisted | private
}

// Uploader YouTube Data API 的最小封装
type Uploader interface {
	ChannelInfo(ctx context.Context, src oauth2.TokenSource) (id, title string, err error)
	Upload(ctx context.Context, src oauth2.TokenSource, meta VideoMetadata, media io.Reader) (videoID string, err error)
}

// apiUploader 基于 google.golang.org/api/youtube/v3 的实现
type apiUploader struct{}

// NewUploader 创建真实的 YouTube API 上传器
func NewUploader() Uploader { return apiUploader{} }

func (apiUploader) ChannelInfo(ctx context.Context, src oauth2.TokenSource) (string, string, error) {
	svc, err := yt.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return "", "", fmt.Errorf("create youtube service: %w", err)
	}
	resp, err := svc.Channels.List([]string{"snippet"}).Mine(true).Do()
	if err != nil {
		return "", "", err
	}
	if len(resp.Items) == 0 {
		return "", "", fmt.Errorf("no youtube channel for this account")
	}
	ch := resp.Items[0]
	return ch.Id, ch.Snippet.Title, nil
}

func (apiUploader) Upload(ctx context.Context, src oauth2.TokenSource, meta VideoMetadata, media io.Reader) (string, error) {
	svc, err := yt.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return "", fmt.Errorf("create youtube service: %w", err)
	}
	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  "22", // People & Blogs
		},
		Status: &yt.VideoStatus{PrivacyStatus: meta.Privacy},
	}
	resp, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(media).Do()
	if err != nil {
		return "", err
	}
	return resp.Id, nil
}
