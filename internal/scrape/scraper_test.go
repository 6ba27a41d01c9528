package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageHTML(urls ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, u := range urls {
		fmt.Fprintf(&sb, `<article><a class="t" href="%s">%s</a></article>`, u, u)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func pagedSource(serverURL string) types.ArticleSource {
	return types.ArticleSource{
		Name:    "Cyprus Mail",
		Tag:     "CM",
		BaseURL: serverURL,
		Scraper: &types.ScraperConfig{
			ListingURLs:  []string{serverURL + "/category/cyprus/page/{page}"},
			ItemSelector: "article",
			LinkSelector: "a.t",
		},
	}
}

func TestListingScraper_StopsAtFirstKnownArticle(t *testing.T) {
	var mu sync.Mutex
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/category/cyprus/page/1":
			_, _ = w.Write([]byte(pageHTML("/n1", "/n2")))
		case "/category/cyprus/page/2":
			_, _ = w.Write([]byte(pageHTML("/n3", "/old1", "/n4")))
		default:
			_, _ = w.Write([]byte(pageHTML("/old2")))
		}
	}))
	defer server.Close()

	s, err := New(pagedSource(server.URL), Deps{})
	require.NoError(t, err)

	got, err := s.Scrape(context.Background(), map[string]bool{server.URL + "/old1": true})
	require.NoError(t, err)

	var urls []string
	for _, a := range got {
		urls = append(urls, strings.TrimPrefix(a.URL, server.URL))
	}
	assert.Equal(t, []string{"/n1", "/n2", "/n3"}, urls)
	assert.Equal(t, []string{"/category/cyprus/page/1", "/category/cyprus/page/2"}, requested)
}

func TestListingScraper_PageCapAndEmptyPage(t *testing.T) {
	calls := 0
	src := pagedSource("https://cm.example")
	src.Scraper.MaxPages = 3
	deps := Deps{Fetch: func(_ context.Context, url string) (string, error) {
		calls++
		return pageHTML(fmt.Sprintf("/p%d", calls)), nil
	}}

	s, err := New(src, deps)
	require.NoError(t, err)
	got, err := s.Scrape(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, calls)

	calls = 0
	deps.Fetch = func(_ context.Context, url string) (string, error) {
		calls++
		if calls == 2 {
			return "<html><body></body></html>", nil
		}
		return pageHTML(fmt.Sprintf("/q%d", calls)), nil
	}
	s, err = New(src, deps)
	require.NoError(t, err)
	got, err = s.Scrape(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, calls)
}

func TestListingScraper_UnpagedSkipsKnown(t *testing.T) {
	src := types.ArticleSource{
		Name: "Philenews",
		Tag:  "PH",
		Scraper: &types.ScraperConfig{
			ListingURLs:  []string{"https://ph.example/kipros/"},
			ItemSelector: "article",
			LinkSelector: "a.t",
		},
	}
	s, err := New(src, Deps{Fetch: func(context.Context, string) (string, error) {
		return pageHTML("/a", "/known", "/b", "/a"), nil
	}})
	require.NoError(t, err)

	got, err := s.Scrape(context.Background(), map[string]bool{"https://ph.example/known": true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://ph.example/a", got[0].URL)
	assert.Equal(t, "https://ph.example/b", got[1].URL)
}

func TestListingScraper_AllFetchesFail(t *testing.T) {
	boom := errors.New("connection refused")
	s, err := New(pagedSource("https://cm.example"), Deps{Fetch: func(context.Context, string) (string, error) {
		return "", boom
	}})
	require.NoError(t, err)

	_, err = s.Scrape(context.Background(), nil)
	var se *ScrapeError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, boom)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(types.ArticleSource{Name: "x"}, Deps{})
	assert.ErrorContains(t, err, "no scraper configured")

	src := pagedSource("https://cm.example")
	src.Scraper.DateFormat = "martian"
	_, err = New(src, Deps{})
	assert.ErrorContains(t, err, "date format")

	src = pagedSource("https://cm.example")
	src.Scraper.Kind = "carrier-pigeon"
	_, err = New(src, Deps{})
	assert.ErrorContains(t, err, "unknown scraper kind")

	src.Scraper.Kind = types.ScraperBrowser
	s, err := New(src, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &BrowserScraper{}, s)
}

type stubScraper struct {
	articles []types.Article
	err      error
}

func (s stubScraper) Scrape(context.Context, map[string]bool) ([]types.Article, error) {
	return s.articles, s.err
}

func TestRefresh(t *testing.T) {
	dir := t.TempDir()
	cmFile := filepath.Join(dir, "cm.json")
	icFile := filepath.Join(dir, "ic.json")
	require.NoError(t, articles.Save(cmFile, []types.Article{{URL: "https://cm.example/old"}}))

	sources := []types.ArticleSource{
		{Name: "CM", Tag: "CM", File: cmFile, Scraper: &types.ScraperConfig{ItemSelector: "article"}},
		{Name: "IC", Tag: "IC", File: icFile, Scraper: &types.ScraperConfig{ItemSelector: "article"}},
		{Name: "Static", Tag: "ST", File: filepath.Join(dir, "st.json")},
	}

	results := Refresh(context.Background(), sources, RefreshOptions{
		Concurrency: 2,
		NewScraper: func(src types.ArticleSource, _ Deps) (Scraper, error) {
			if src.Name == "IC" {
				return stubScraper{err: errors.New("blocked")}, nil
			}
			return stubScraper{articles: []types.Article{
				{URL: "https://cm.example/new"},
				{URL: "https://cm.example/old"},
			}}, nil
		},
	})

	require.Len(t, results, 3)
	assert.Equal(t, Result{Source: "CM", Added: 1, Total: 2}, results[0])
	assert.Equal(t, "IC", results[1].Source)
	assert.ErrorContains(t, results[1].Err, "blocked")
	assert.Equal(t, Result{Source: "Static"}, results[2])

	saved, err := articles.Load(cmFile, "", nil)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "https://cm.example/new", saved[0].URL)
	assert.NoFileExists(t, icFile)
}

func TestExcerpt(t *testing.T) {
	html := `<html><head><title>Budget</title><meta name="description" content="The House passed the budget on Thursday."></head>
<body><article><h1>Budget</h1><p>The House of Representatives passed the 2026 state budget on Thursday after a lengthy debate that lasted well into the evening, with opposition parties abstaining.</p></article></body></html>`

	ex, err := Excerpt(html, "https://cm.example/budget")
	require.NoError(t, err)
	assert.NotEmpty(t, ex)
	assert.Contains(t, ex, "budget")
}

func TestEnrichAbstracts(t *testing.T) {
	list := []types.Article{
		{URL: "https://x.example/has", Abstract: types.StringPtr("kept")},
		{URL: "https://x.example/missing"},
		{URL: "https://x.example/broken"},
	}
	page := `<html><head><meta name="description" content="Filled from the page."></head><body><article><p>Filled from the page body with enough words to count as content.</p></article></body></html>`

	n := EnrichAbstracts(context.Background(), list, func(_ context.Context, url string) (string, error) {
		if strings.HasSuffix(url, "broken") {
			return "", errors.New("404")
		}
		return page, nil
	}, nil)

	assert.Equal(t, 1, n)
	assert.Equal(t, "kept", list[0].AbstractText())
	assert.Contains(t, list[1].AbstractText(), "Filled from the page")
	assert.Nil(t, list[2].Abstract)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "αβγ", truncateRunes("αβγ", 3))
	assert.Equal(t, "αβ…", truncateRunes("αβγ", 2))
}
