package fetch

import "net/http"

// Profile is a browser-like header set. Portals behind WAFs answer plain
// library requests with errors or empty shells, so every request carries one
// of these.
type Profile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// defaultProfile matches a mainstream desktop Chrome on Windows.
var defaultProfile = Profile{
	UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	AcceptLanguage: "tr-TR,tr;q=0.8,en-US;q=0.5,en;q=0.3",
}

// rotationProfiles is the ordered user-agent rotation for the
// RotatingUserAgent strategy. Some portals block by agent string; trying a
// handful of distinct browsers gets past the crude filters.
var rotationProfiles = []Profile{
	defaultProfile,
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "tr-TR,tr;q=0.8,en-US;q=0.5,en;q=0.3",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "tr-TR,tr;q=0.8,en-US;q=0.5,en;q=0.3",
	},
	{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage: "tr-TR,tr;q=0.8,en-US;q=0.5,en;q=0.3",
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/91.0.864.59",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "tr-TR,tr;q=0.8,en-US;q=0.5,en;q=0.3",
	},
}

// apply sets the profile headers on a request. Accept-Encoding is left to
// the transport so gzip responses are transparently decoded.
func (p Profile) apply(req *http.Request) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
