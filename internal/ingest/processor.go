// Package ingest turns user-selected image files into size-bounded data URIs
// suitable for storing inline on a product document.
package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/artisanswear/artisans/internal/domain"
)

const (
	DefaultMaxWidth = 800
	DefaultQuality  = 65
)

// Processor resizes and re-encodes uploaded images. Images wider than
// MaxWidth are downscaled proportionally; narrower ones keep their size.
// Everything is re-encoded as JPEG at the fixed lossy Quality.
type Processor struct {
	MaxWidth int
	Quality  int
}

func NewProcessor(maxWidth, quality int) *Processor {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Processor{MaxWidth: maxWidth, Quality: quality}
}

// Process encodes one data URI per input file, order preserved. The batch is
// all-or-nothing: if any file fails to decode the whole call fails with
// domain.ErrDecode and no partial results are returned. Files are processed
// concurrently but reassembled in input order.
func (p *Processor) Process(ctx context.Context, files []io.Reader) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	// Drain the readers up front; multipart bodies cannot be read from
	// multiple goroutines.
	raw := make([][]byte, len(files))
	for i, f := range files {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("%w: reading file %d: %v", domain.ErrDecode, i, err)
		}
		raw[i] = data
	}

	results := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i := range raw {
		i := i // per-iteration copy; module is built with a pre-1.22 toolchain
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			uri, err := p.encodeOne(raw[i])
			if err != nil {
				return fmt.Errorf("file %d: %w", i, err)
			}
			results[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Processor) encodeOne(data []byte) (string, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if src.Bounds().Dx() > p.MaxWidth {
		// Height 0 keeps the aspect ratio.
		src = imaging.Resize(src, p.MaxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return "", fmt.Errorf("%w: re-encode: %v", domain.ErrDecode, err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
