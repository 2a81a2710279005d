package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // decoders accepted by ResolveImage
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

// maxImageBytes caps downloads and files read by ResolveImage.
const maxImageBytes = 10 << 20

var imageHTTPClient = &http.Client{Timeout: 30 * time.Second}

// ResolveImage loads the image at uri, an http(s) URL, a file:// URI or a
// local path, and returns it re-encoded as base64 PNG ready for an image
// command. PNG, JPEG, GIF and WebP sources are accepted.
func ResolveImage(ctx context.Context, uri string) (string, error) {
	data, err := fetchImage(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("failed to load image %s: %w", uri, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to load image %s: %w", uri, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding image %s: %w", uri, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func fetchImage(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		resp, err := imageHTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return readLimited(resp.Body)
	}

	f, err := os.Open(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}
