package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanswear/artisans/internal/domain"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestProcessDownscalesWideImages(t *testing.T) {
	p := NewProcessor(800, 65)

	uris, err := p.Process(context.Background(), []io.Reader{
		bytes.NewReader(testJPEG(t, 2000, 1000)),
	})
	require.NoError(t, err)
	require.Len(t, uris, 1)

	out := decodeDataURI(t, uris[0])
	assert.Equal(t, 800, out.Bounds().Dx())
	assert.Equal(t, 400, out.Bounds().Dy(), "aspect ratio preserved")
}

func TestProcessLeavesNarrowImagesAlone(t *testing.T) {
	p := NewProcessor(800, 65)

	uris, err := p.Process(context.Background(), []io.Reader{
		bytes.NewReader(testJPEG(t, 640, 480)),
	})
	require.NoError(t, err)
	require.Len(t, uris, 1)

	out := decodeDataURI(t, uris[0])
	assert.Equal(t, 640, out.Bounds().Dx())
	assert.Equal(t, 480, out.Bounds().Dy())
}

func TestProcessReencodesPNGAsJPEG(t *testing.T) {
	p := NewProcessor(800, 65)

	uris, err := p.Process(context.Background(), []io.Reader{
		bytes.NewReader(testPNG(t, 100, 100)),
	})
	require.NoError(t, err)
	require.Len(t, uris, 1)
	assert.True(t, strings.HasPrefix(uris[0], "data:image/jpeg;base64,"))
}

func TestProcessPreservesInputOrder(t *testing.T) {
	p := NewProcessor(800, 65)

	widths := []int{100, 300, 200, 500}
	files := make([]io.Reader, 0, len(widths))
	for _, w := range widths {
		files = append(files, bytes.NewReader(testJPEG(t, w, 50)))
	}

	uris, err := p.Process(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, uris, len(widths))
	for i, w := range widths {
		assert.Equal(t, w, decodeDataURI(t, uris[i]).Bounds().Dx(), "result %d out of order", i)
	}
}

func TestProcessBatchIsAllOrNothing(t *testing.T) {
	p := NewProcessor(800, 65)

	uris, err := p.Process(context.Background(), []io.Reader{
		bytes.NewReader(testJPEG(t, 100, 100)),
		strings.NewReader("not an image"),
		bytes.NewReader(testJPEG(t, 100, 100)),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.Nil(t, uris, "no partial results on a failed batch")
}

func TestProcessEmptyBatch(t *testing.T) {
	p := NewProcessor(800, 65)
	uris, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, uris)
}
