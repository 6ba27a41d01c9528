package types

// ArticleSource describes one scraped outlet feeding the linker.
type ArticleSource struct {
	Name    string         `json:"name" yaml:"name" validate:"required"`
	Tag     string         `json:"tag" yaml:"tag" validate:"required"`
	File    string         `json:"file" yaml:"file" validate:"required"`
	BaseURL string         `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Scraper *ScraperConfig `json:"scraper,omitempty" yaml:"scraper,omitempty"`
}

// ScraperKind selects how listing pages are retrieved.
type ScraperKind string

const (
	// ScraperListing fetches listing pages over plain HTTP.
	ScraperListing ScraperKind = "listing"
	// ScraperBrowser renders listing pages in a headless browser first.
	ScraperBrowser ScraperKind = "browser"
)

// ScraperConfig holds the selectors and paging rules for one listing.
type ScraperConfig struct {
	Kind ScraperKind `json:"kind" yaml:"kind" validate:"omitempty,oneof=listing browser"`
	// ListingURLs are scraped in order. A "{page}" placeholder enables paging.
	ListingURLs      []string `json:"listing_urls" yaml:"listing_urls" validate:"min=1,dive,required"`
	ItemSelector     string   `json:"item_selector" yaml:"item_selector" validate:"required"`
	LinkSelector     string   `json:"link_selector" yaml:"link_selector"`
	TitleSelector    string   `json:"title_selector" yaml:"title_selector"`
	AbstractSelector string   `json:"abstract_selector,omitempty" yaml:"abstract_selector,omitempty"`
	TimeSelector     string   `json:"time_selector,omitempty" yaml:"time_selector,omitempty"`
	TimeAttr         string   `json:"time_attr,omitempty" yaml:"time_attr,omitempty"`
	AuthorSelector   string   `json:"author_selector,omitempty" yaml:"author_selector,omitempty"`
	ImageSelector    string   `json:"image_selector,omitempty" yaml:"image_selector,omitempty"`
	DateFormat       string   `json:"date_format,omitempty" yaml:"date_format,omitempty" validate:"omitempty,oneof=iso greek russian english turkish dotted any"`
	// MaxPages caps paged listings, or "load more" clicks for browser listings.
	MaxPages         int    `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"gte=0"`
	LoadMoreSelector string `json:"load_more_selector,omitempty" yaml:"load_more_selector,omitempty"`
	CookieSelector   string `json:"cookie_selector,omitempty" yaml:"cookie_selector,omitempty"`
	EnrichAbstract   bool   `json:"enrich_abstract,omitempty" yaml:"enrich_abstract,omitempty"`
}
