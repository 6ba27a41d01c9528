package publish

import (
	"encoding/json"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// StorageState is the saved browser session produced by the login helper
// (Playwright's storage-state format).
type StorageState struct {
	Cookies []StoredCookie `json:"cookies"`
}

// StoredCookie is one cookie of a StorageState.
type StoredCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadStorageState reads a session file.
func LoadStorageState(path string) (*StorageState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PublishError{Step: "session", Message: "session file not found: " + path, Cause: err}
		}
		return nil, &PublishError{Step: "session", Message: "failed to read session file", Cause: err}
	}

	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &PublishError{Step: "session", Message: "failed to parse session file", Cause: err}
	}
	if len(state.Cookies) == 0 {
		return nil, &PublishError{Step: "session", Message: "session file contains no cookies"}
	}
	return &state, nil
}

// CookieParams converts the stored cookies for network.SetCookies. Session
// cookies (expires <= 0) carry no expiry.
func (s *StorageState) CookieParams() []*network.CookieParam {
	out := make([]*network.CookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		switch c.SameSite {
		case "Strict":
			p.SameSite = network.CookieSameSiteStrict
		case "Lax":
			p.SameSite = network.CookieSameSiteLax
		case "None":
			p.SameSite = network.CookieSameSiteNone
		}
		if c.Expires > 0 {
			sec := int64(c.Expires)
			nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
			exp := cdp.TimeSinceEpoch(time.Unix(sec, nsec))
			p.Expires = &exp
		}
		out = append(out, p)
	}
	return out
}
