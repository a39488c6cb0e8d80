package video

import (
	"net/url"
	"strings"
)

type EmbedType int

const (
	EmbedTypeNone EmbedType = iota
	EmbedTypeYouTube
	EmbedTypeVimeo
)

type EmbedInfo struct {
	Type EmbedType
	// URL is the player address for an iframe
	URL string
	// Thumbnail is only known for YouTube
	Thumbnail string
}

func (e EmbedInfo) Playable() bool {
	return e.Type != EmbedTypeNone
}

// TrailerEmbed turns a trailer watch link into something an iframe can play.
// Links to other hosts are not embedded.
func TrailerEmbed(link *string) EmbedInfo {
	if link == nil || *link == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}

	u, err := url.Parse(*link)
	if err != nil {
		return EmbedInfo{Type: EmbedTypeNone}
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return youTube(id)
		}
		if id, ok := strings.CutPrefix(u.Path, "/embed/"); ok && id != "" {
			return youTube(id)
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return youTube(id)
		}
	case "vimeo.com":
		if id := strings.Trim(u.Path, "/"); id != "" && !strings.Contains(id, "/") {
			return EmbedInfo{Type: EmbedTypeVimeo, URL: "https://player.vimeo.com/video/" + id}
		}
	}

	return EmbedInfo{Type: EmbedTypeNone}
}

func youTube(id string) EmbedInfo {
	id = url.PathEscape(id)
	return EmbedInfo{
		Type:      EmbedTypeYouTube,
		URL:       "https://www.youtube-nocookie.com/embed/" + id,
		Thumbnail: "https://img.youtube.com/vi/" + id + "/hqdefault.jpg",
	}
}
