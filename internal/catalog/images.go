package catalog

const (
	ImageBase    = "https://image.tmdb.org/t/p"
	PosterSize   = "/w500"
	BackdropSize = "/w1280"
	ProfileSize  = "/w185"
	LogoSize     = "/w92"
)

func ImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return ImageBase + size + *path
}
