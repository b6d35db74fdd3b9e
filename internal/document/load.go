package document

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/grepscan/internal/model"
)

// URLHeader names the dump header that carries the document URL.
const URLHeader = "X-Grepscan-Url"

var (
	// ErrInvalidDump is returned when a response dump cannot be read.
	ErrInvalidDump = errors.New("invalid response dump")

	// ErrNoURL is returned when no document URL is known.
	ErrNoURL = errors.New("document URL is required")
)

// Parse reads a raw HTTP/1.x response dump. When rawURL is empty the URL
// is taken from the X-Grepscan-Url header.
func Parse(rawURL string, r io.Reader) (*model.Document, error) {
	return parse(rawURL, "", r)
}

// parse reads a dump, choosing the first non-empty of rawURL, the
// X-Grepscan-Url header and fallback as the document URL.
func parse(rawURL, fallback string, r io.Reader) (*model.Document, error) {
	resp, err := http.ReadResponse(bufio.NewReader(r), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDump, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, model.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrInvalidDump, err)
	}

	if rawURL == "" {
		rawURL = resp.Header.Get(URLHeader)
	}
	if rawURL == "" {
		rawURL = fallback
	}
	return FromParts(rawURL, resp.StatusCode, model.Headers(resp.Header), body)
}

// FromParts builds a document from response pieces already in hand.
// HTML bodies are parsed into an element tree and clear text; a body that
// fails to parse leaves the tree nil.
func FromParts(rawURL string, status int, headers model.Headers, body []byte) (*model.Document, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrNoURL
	}
	if headers == nil {
		headers = model.Headers{}
	}
	if len(body) > model.MaxBodySize {
		body = body[:model.MaxBodySize]
	}

	doc := &model.Document{
		URL:         NormalizeURL(rawURL),
		StatusCode:  status,
		ContentType: mediaType(headers.Get("Content-Type"), body),
		Headers:     headers,
		Body:        string(body),
	}

	if doc.IsHTML() && doc.HasBody() {
		if result, err := ParseHTML(bytes.NewReader(body)); err == nil {
			doc.Root = result.Root
			doc.Snapshot = result.Text
		}
	}
	return doc, nil
}

// LoadFile reads a response dump from disk. The URL is taken from the
// X-Grepscan-Url header, falling back to the file's absolute path.
func LoadFile(path string) (*model.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	f, err := os.Open(abs) //nolint:gosec // dump paths come from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	doc, err := parse("", "file://"+filepath.ToSlash(abs), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// mediaType returns the lower-case media type without parameters. When the
// header is missing or malformed the body is sniffed.
func mediaType(header string, body []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return strings.ToLower(mt)
		}
	}
	if len(body) == 0 {
		return ""
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(body))
	if err != nil {
		return ""
	}
	return mt
}
