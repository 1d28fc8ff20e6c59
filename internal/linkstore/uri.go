package linkstore

import "net/url"

// isAbsoluteURI reports whether href has a scheme, classifying the link
// as a web-link rather than a relationship to a local document (§4.3).
func isAbsoluteURI(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.IsAbs()
}
