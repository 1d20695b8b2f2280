package ranges

import (
	"net/url"
	"path/filepath"

	"github.com/kodemon/sats/errors"
)

// ResolvePath returns the directory a file backed store lives in.
// scheme://./name is relative to dataFolder, scheme:///abs/name is absolute.
func ResolvePath(storeURL *url.URL, dataFolder string) (string, error) {
	if storeURL.Host == "." {
		if storeURL.Path == "" || storeURL.Path == "/" {
			return "", errors.NewConfigurationError("store URL %s has no path", storeURL.String())
		}

		return filepath.Join(dataFolder, storeURL.Path), nil
	}

	if storeURL.Host != "" {
		// scheme://name
		return filepath.Join(dataFolder, storeURL.Host, storeURL.Path), nil
	}

	if storeURL.Path == "" {
		return "", errors.NewConfigurationError("store URL %s has no path", storeURL.String())
	}

	return storeURL.Path, nil
}
