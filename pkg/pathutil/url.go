package pathutil

import (
	"encoding/base64"
	"net/url"
	"path"
)

// ResolveURL resolves ref against base using standard URL resolution,
// preserving query and fragment components of ref.
func ResolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// RelativeURL expresses target relative to base's directory, preserving
// target's query and fragment.
func RelativeURL(base, target string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	targetURL, err := url.Parse(target)
	if err != nil {
		return "", err
	}

	rel, err := Relative(path.Dir(baseURL.Path), targetURL.Path)
	if err != nil {
		return "", err
	}

	result := &url.URL{Path: rel, RawQuery: targetURL.RawQuery, Fragment: targetURL.Fragment}
	return result.String(), nil
}

// DataURI builds a base64 "data:" URI for the given MIME type and payload,
// used for inline source-map emission.
func DataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}
