package utils

import (
	"io"
	"net/http"
	"os"
	"path"

	"github.com/pkg/errors"
)

// DownloadImage fetches the remote image into a temporary file and returns
// it rewound to the start. The caller removes the file when done.
func DownloadImage(url string) (*os.File, error) {
	res, err := http.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to download image file from URI: %s", url)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unable to download image file from URI: %s, status %v", url, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "image-*"+path.Ext(url))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create temporary file")
	}

	// Copy the image binary data into the temporary file.
	if _, err := io.Copy(tmpfile, res.Body); err != nil {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		return nil, errors.Wrap(err, "unable to copy the source URI into the destination file")
	}
	if _, err := tmpfile.Seek(0, io.SeekStart); err != nil {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		return nil, errors.Wrap(err, "unable to rewind the temporary file")
	}
	return tmpfile, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url.
func IsValidUrl(uri string) bool {
	res, err := http.NewRequest(http.MethodGet, uri, nil)
	return err == nil && res.URL.Scheme != "" && res.URL.Host != ""
}
