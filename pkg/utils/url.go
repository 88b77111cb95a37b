package utils

import (
	"net/url"
	"path"

	"github.com/pkg/errors"
)

// FileNameFromURL returns the last path segment of rawURL, used as the
// default output name.
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", errors.Errorf("no output filename could be derived from %q", rawURL)
	}
	return name, nil
}
