// Package types defines the data structures shared between pipeline stages.
package types

// Article is one scraped listing entry as persisted in a source file.
// Nullable fields are pointers so that missing values round-trip as JSON null.
type Article struct {
	Title    *string `json:"title"`
	Abstract *string `json:"abstract"`
	Datetime *string `json:"datetime"` // ISO-8601 or null
	URL      string  `json:"url"`
	ImageURL *string `json:"image_url,omitempty"`
	Author   *string `json:"author,omitempty"`
}

// TitleText returns the title or an empty string.
func (a Article) TitleText() string {
	return deref(a.Title)
}

// AbstractText returns the abstract or an empty string.
func (a Article) AbstractText() string {
	return deref(a.Abstract)
}

// DatetimeText returns the raw datetime or an empty string.
func (a Article) DatetimeText() string {
	return deref(a.Datetime)
}

// Candidate is the compact article form sent to the linker prompt.
// Short keys keep the serialized article list small.
type Candidate struct {
	Title    string `json:"t"`
	Abstract string `json:"a"`
	URL      string `json:"u"`
	Tag      string `json:"tag"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
