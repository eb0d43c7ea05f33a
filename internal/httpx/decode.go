package httpx

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// AcceptEncoding is the value sent by callers that opt into ReadBody's decoding.
// Setting it by hand turns off net/http's transparent gzip, so ReadBody
// handles gzip as well.
const AcceptEncoding = "br, gzip"

// ReadBody reads, decodes and closes resp.Body according to Content-Encoding.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("httpx: gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	default:
		return nil, fmt.Errorf("httpx: unsupported content-encoding %q", enc)
	}
	return io.ReadAll(r)
}
