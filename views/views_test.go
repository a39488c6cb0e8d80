package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/middleware"
	"github.com/AdamBeresnev/decide2watch/internal/store"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func movie(id int, title string) bracket.MediaItem {
	return bracket.MediaItem{
		ID:          id,
		MediaType:   bracket.MediaMovie,
		Title:       title,
		Overview:    "Overview of " + title,
		VoteAverage: 7.84,
		ReleaseDate: "1999-03-31",
		Runtime:     utils.Ptr(136),
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "", FormatRuntime(nil))
	assert.Equal(t, "45m", FormatRuntime(utils.Ptr(45)))
	assert.Equal(t, "2h", FormatRuntime(utils.Ptr(120)))
	assert.Equal(t, "2h 16m", FormatRuntime(utils.Ptr(136)))
	assert.Equal(t, "7.8", FormatRating(7.84))
	assert.Equal(t, "1 season", FormatSeasons(utils.Ptr(1)))
	assert.Equal(t, "5 seasons", FormatSeasons(utils.Ptr(5)))
	assert.Equal(t, "1999 · 2h 16m · Movie", Facts(movie(1, "The Matrix")))

	show := bracket.MediaItem{MediaType: bracket.MediaTV, ReleaseDate: "2008-01-20", NumberOfSeasons: utils.Ptr(5)}
	assert.Equal(t, "2008 · 5 seasons · TV", Facts(show))
	assert.Equal(t, "TV", Facts(bracket.MediaItem{MediaType: bracket.MediaTV}))
}

func TestSetupPage(t *testing.T) {
	out := render(t, SetupPage(SetupData{
		Config: tournament.Config{
			ContentFilter: tournament.FilterTV,
			BracketSize:   32,
			GenreID:       utils.Ptr(18),
			SearchQuery:   `"quoted" <b>`,
		},
		Error:     "Only found 3 titles, need 32. Try a different genre or search.",
		APIKeySet: false,
	}))

	assert.Contains(t, out, `value="tv" checked`)
	assert.Contains(t, out, `value="32" checked`)
	assert.Contains(t, out, `<option value="18" selected>Drama</option>`)
	assert.Contains(t, out, `value="&#34;quoted&#34; &lt;b&gt;"`)
	assert.Contains(t, out, "Only found 3 titles, need 32.")
	assert.Contains(t, out, "Set TMDB_API_KEY")
	assert.NotContains(t, out, "<b>")
}

func TestLoadingPage(t *testing.T) {
	out := render(t, LoadingPage(140))
	assert.Contains(t, out, `<meta http-equiv="refresh" content="1">`)
	assert.Contains(t, out, `value="100"`)
}

func TestMatchupPage(t *testing.T) {
	a := movie(1, "Alien & Aliens")
	a.Trailer = utils.Ptr("https://www.youtube.com/watch?v=abc123")
	a.Cast = []bracket.CastMember{{Name: "Sigourney Weaver", Character: "Ripley"}}
	a.WatchProviders = []bracket.WatchProvider{{ProviderName: "Netflix", LogoPath: "/n.png", Type: bracket.ProviderFlatrate}}
	b := movie(2, "Blade Runner")

	out := render(t, MatchupPage(MatchupData{
		RoundName:      "Quarterfinals",
		MatchNumber:    2,
		MatchesInRound: 4,
		Percent:        14,
		A:              a,
		B:              b,
	}))

	assert.Contains(t, out, "<h1>Quarterfinals</h1>")
	assert.Contains(t, out, "Match 2 of 4")
	assert.Contains(t, out, "Alien &amp; Aliens")
	assert.Contains(t, out, "as Ripley")
	assert.Contains(t, out, `title="Stream: Netflix"`)
	assert.Contains(t, out, "https://www.youtube-nocookie.com/embed/abc123")
	assert.Contains(t, out, `name="side" value="a"`)
	assert.Contains(t, out, `name="side" value="b"`)
}

func TestDynamicTextIsEscaped(t *testing.T) {
	a := movie(1, `Tom & "Jerry" <3`)
	a.Genres = []string{"<Horror>"}
	a.Cast = []bracket.CastMember{{Name: "Ann", Character: "<Ripley>"}}
	a.WatchProviders = []bracket.WatchProvider{{ProviderName: `Net"flix`, LogoPath: "/n.png", Type: bracket.ProviderType(`"><script>`)}}

	out := render(t, MatchupPage(MatchupData{RoundName: "<Final>", MatchNumber: 1, MatchesInRound: 1, A: a, B: movie(2, "B")}))
	assert.Contains(t, out, "<h1>&lt;Final&gt;</h1>")
	assert.Contains(t, out, "<title>&lt;Final&gt; | Decide2Watch</title>")
	assert.Contains(t, out, "Tom &amp; &#34;Jerry&#34; &lt;3")
	assert.Contains(t, out, "&lt;Horror&gt;")
	assert.Contains(t, out, "as &lt;Ripley&gt;")
	assert.Contains(t, out, `title="&#34;&gt;&lt;script&gt;: Net&#34;flix"`)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<Ripley>")

	recent := []bracket.Result{{Title: "<b>Heat</b>", BracketSize: 8, ContentFilter: "<anime>", CreatedAt: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)}}
	out = render(t, HistoryPage(recent, nil))
	assert.Contains(t, out, `<span class="title">&lt;b&gt;Heat&lt;/b&gt;</span>`)
	assert.Contains(t, out, "8 titles · &lt;anime&gt; · Mar 4, 2025")
}

func TestNewMatchupData(t *testing.T) {
	_, ok := NewMatchupData(tournament.Initial())
	assert.False(t, ok)

	s := tournament.Reduce(tournament.Initial(), tournament.ReplaceConfig(tournament.Config{ContentFilter: tournament.FilterMovie, BracketSize: 8}))
	items := make([]bracket.MediaItem, 8)
	for i := range items {
		items[i] = movie(i+1, "Movie")
	}
	s = tournament.Reduce(s, tournament.ItemsReady{Items: items})
	s = tournament.Reduce(s, tournament.PickWinner{Side: bracket.SideA})

	data, ok := NewMatchupData(s)
	require.True(t, ok)
	assert.Equal(t, "Quarterfinals", data.RoundName)
	assert.Equal(t, 2, data.MatchNumber)
	assert.Equal(t, 4, data.MatchesInRound)
	assert.Equal(t, 14, data.Percent)
	assert.Equal(t, 3, data.A.ID)
	assert.Equal(t, 4, data.B.ID)
}

func TestWinnerPage(t *testing.T) {
	a, b, c, d := movie(1, "Heat"), movie(2, "Ronin"), movie(3, "Collateral"), movie(4, "Thief")
	rounds := []bracket.Round{
		{Name: "Semifinals", Matchups: []bracket.Matchup{
			bracket.NewMatchup(a, b).Decide(bracket.SideA),
			bracket.NewMatchup(c, d).Decide(bracket.SideB),
		}},
		{Name: "Final", Matchups: []bracket.Matchup{
			bracket.NewMatchup(a, d).Decide(bracket.SideA),
		}},
	}

	recap := PrepareBracketData(rounds)
	require.Len(t, recap.Rounds, 2)
	assert.Equal(t, bracket.SideB, recap.Rounds[0].Matchups[1].Winner)

	out := render(t, WinnerPage(a, recap))
	assert.Contains(t, out, "<h1>Heat</h1>")
	assert.Contains(t, out, "<h3>Semifinals</h3>")
	assert.Contains(t, out, `<strong class="won">Thief</strong>`)
	assert.Contains(t, out, `<span class="lost">Collateral</span>`)
}

func TestPrepareBracketDataSkipsUndecided(t *testing.T) {
	rounds := []bracket.Round{{Name: "Final", Matchups: []bracket.Matchup{
		bracket.NewMatchup(movie(1, "A"), movie(2, "B")),
	}}}
	recap := PrepareBracketData(rounds)
	require.Len(t, recap.Rounds, 1)
	assert.Empty(t, recap.Rounds[0].Matchups)
}

func TestHistoryPage(t *testing.T) {
	assert.Contains(t, render(t, HistoryPage(nil, nil)), "No finished tournaments yet.")

	recent := []bracket.Result{{
		Title:         "Heat",
		BracketSize:   16,
		ContentFilter: "both",
		CreatedAt:     time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC),
	}}
	crowned := []store.CrownCount{{Title: "Heat", Wins: 3}}

	out := render(t, HistoryPage(recent, crowned))
	assert.Contains(t, out, "16 titles · Movies &amp; TV · Mar 4, 2025")
	assert.Contains(t, out, "Heat <span class=\"wins\">3×</span>")
}

func TestSetupConfig(t *testing.T) {
	prefs := middleware.Preferences{ContentFilter: tournament.FilterBoth, BracketSize: 8}
	ctx := context.WithValue(context.Background(), middleware.PreferencesKey, prefs)

	assert.Equal(t, tournament.DefaultConfig(), SetupConfig(context.Background(), tournament.Initial()))
	assert.Equal(t, prefs.Config(), SetupConfig(ctx, tournament.Initial()))

	failed := tournament.Reduce(tournament.Initial(), tournament.ReplaceConfig(tournament.Config{ContentFilter: tournament.FilterTV, BracketSize: 32}))
	failed = tournament.Reduce(failed, tournament.Fail{Message: "boom"})
	assert.Equal(t, tournament.FilterTV, SetupConfig(ctx, failed).ContentFilter)
}
