package video

import (
	"testing"

	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestTrailerEmbed(t *testing.T) {
	tests := []struct {
		name string
		link *string
		want EmbedInfo
	}{
		{"nil", nil, EmbedInfo{}},
		{"empty", utils.Ptr(""), EmbedInfo{}},
		{
			"watch link",
			utils.Ptr("https://www.youtube.com/watch?v=dQw4w9WgXcQ"),
			EmbedInfo{
				Type:      EmbedTypeYouTube,
				URL:       "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
				Thumbnail: "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
			},
		},
		{
			"watch link with extra params",
			utils.Ptr("https://youtube.com/watch?v=abc123&t=42s"),
			EmbedInfo{
				Type:      EmbedTypeYouTube,
				URL:       "https://www.youtube-nocookie.com/embed/abc123",
				Thumbnail: "https://img.youtube.com/vi/abc123/hqdefault.jpg",
			},
		},
		{
			"short link",
			utils.Ptr("https://youtu.be/abc123?si=xyz"),
			EmbedInfo{
				Type:      EmbedTypeYouTube,
				URL:       "https://www.youtube-nocookie.com/embed/abc123",
				Thumbnail: "https://img.youtube.com/vi/abc123/hqdefault.jpg",
			},
		},
		{
			"embed link",
			utils.Ptr("https://www.youtube.com/embed/abc123"),
			EmbedInfo{
				Type:      EmbedTypeYouTube,
				URL:       "https://www.youtube-nocookie.com/embed/abc123",
				Thumbnail: "https://img.youtube.com/vi/abc123/hqdefault.jpg",
			},
		},
		{
			"vimeo",
			utils.Ptr("https://vimeo.com/76979871"),
			EmbedInfo{Type: EmbedTypeVimeo, URL: "https://player.vimeo.com/video/76979871"},
		},
		{"youtube without id", utils.Ptr("https://www.youtube.com/channel/UC123"), EmbedInfo{}},
		{"other host", utils.Ptr("https://example.com/trailer.mp4"), EmbedInfo{}},
		{"garbage", utils.Ptr("://not a url"), EmbedInfo{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrailerEmbed(tt.link)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Type != EmbedTypeNone, got.Playable())
		})
	}
}
