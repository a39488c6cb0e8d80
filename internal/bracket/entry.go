package bracket

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

type ProviderType string

const (
	ProviderFlatrate ProviderType = "flatrate"
	ProviderFree     ProviderType = "free"
	ProviderRent     ProviderType = "rent"
	ProviderBuy      ProviderType = "buy"
)

type CastMember struct {
	ID          int
	Name        string
	Character   string
	ProfilePath *string
}

type WatchProvider struct {
	ProviderID   int
	ProviderName string
	LogoPath     string
	Type         ProviderType
}

// ItemKey identifies a MediaItem. Movie and TV ids come from separate
// sequences, so the id alone is not unique.
type ItemKey struct {
	MediaType MediaType
	ID        int
}

// MediaItem is a single contender. Everything except the key is display
// data that the bracket never looks at.
type MediaItem struct {
	ID           int
	MediaType    MediaType
	Title        string
	PosterPath   *string
	BackdropPath *string
	Overview     string
	VoteAverage  float64
	VoteCount    int
	GenreIDs     []int
	Genres       []string
	ReleaseDate  string
	Popularity   float64

	// Filled in by enrichment
	Runtime          *int
	NumberOfSeasons  *int
	NumberOfEpisodes *int
	Tagline          *string
	Cast             []CastMember
	WatchProviders   []WatchProvider
	Trailer          *string
}

func (m MediaItem) Key() ItemKey {
	return ItemKey{MediaType: m.MediaType, ID: m.ID}
}

func (m MediaItem) Same(other MediaItem) bool {
	return m.Key() == other.Key()
}

// Year returns the leading year of the release date, or "" when unknown.
func (m MediaItem) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}
