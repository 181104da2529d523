package services

import (
	"net/url"
	"regexp"
	"strings"
)

// LinkKind selects the embed rendering strategy for a game URL.
type LinkKind string

const (
	LinkVideo   LinkKind = "video"
	LinkPhoto   LinkKind = "photo"
	LinkUnknown LinkKind = "unknown"
	LinkInvalid LinkKind = "invalid"
)

type LinkMeta struct {
	Kind    LinkKind `json:"kind"`
	VideoID string   `json:"video_id,omitempty"`
	Open    string   `json:"open,omitempty"`
}

var shortsPathRe = regexp.MustCompile(`/shorts/([a-zA-Z0-9_-]+)`)

// ParseLink classifies a game URL without any network access. Recognized
// hosts are YouTube (watch links, youtu.be short links and /shorts/ paths)
// and Instagram; everything else parseable is unknown.
func ParseLink(raw string) LinkMeta {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return LinkMeta{Kind: LinkInvalid}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	if strings.Contains(host, "youtube.com") || host == "youtu.be" {
		if host == "youtu.be" {
			if id := strings.TrimPrefix(u.Path, "/"); id != "" {
				return LinkMeta{Kind: LinkVideo, VideoID: id, Open: u.String()}
			}
		}
		if v := u.Query().Get("v"); v != "" {
			return LinkMeta{Kind: LinkVideo, VideoID: v, Open: u.String()}
		}
		if m := shortsPathRe.FindStringSubmatch(u.Path); m != nil {
			return LinkMeta{Kind: LinkVideo, VideoID: m[1], Open: u.String()}
		}
		return LinkMeta{Kind: LinkUnknown, Open: u.String()}
	}

	if strings.Contains(host, "instagram.com") {
		return LinkMeta{Kind: LinkPhoto, Open: u.String()}
	}

	return LinkMeta{Kind: LinkUnknown, Open: u.String()}
}
