package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

var ErrNotImage = errors.New("file is not an image")

// Source is one selected file. Open is called once, from the decoding
// goroutine.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

func FromBytes(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type Decoder struct {
	// limit caps concurrent decodes; zero means one goroutine per file.
	limit int
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func NewDecoderWithLimit(limit int) *Decoder {
	return &Decoder{limit: limit}
}

// DecodeBatch encodes every source as a data URL. Results keep the order
// of files. The first failure cancels the rest and no result is returned.
func (d *Decoder) DecodeBatch(ctx context.Context, files []Source) ([]string, error) {
	results := make([]string, len(files))
	if len(files) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if d != nil && d.limit > 0 {
		g.SetLimit(d.limit)
	}

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			encoded, err := Encode(file)
			if err != nil {
				return err
			}
			results[i] = encoded
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Encode reads the whole file and returns data:<mime>;base64,<payload>.
func Encode(file Source) (string, error) {
	if file.Open == nil {
		return "", fmt.Errorf("open %s: no reader", file.Name)
	}
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file.Name, err)
	}

	mimeType := mimetype.Detect(data).String()
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %s (%s)", ErrNotImage, file.Name, mimeType)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
