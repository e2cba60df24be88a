package media

import (
	"bytes"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

type preparedImage struct {
	data        []byte
	contentType string
	ext         string
}

var formatMeta = map[imaging.Format]struct {
	contentType string
	ext         string
}{
	imaging.JPEG: {"image/jpeg", ".jpg"},
	imaging.PNG:  {"image/png", ".png"},
	imaging.GIF:  {"image/gif", ".gif"},
	imaging.TIFF: {"image/tiff", ".tiff"},
	imaging.BMP:  {"image/bmp", ".bmp"},
}

// prepareImage decodes the file, applies EXIF orientation and shrinks it to
// fit maxDimension (0 keeps the original size). The output keeps the input
// format when it can be told from the file name, PNG otherwise.
func prepareImage(localPath string, maxDimension int) (*preparedImage, error) {
	if localPath == "" {
		return nil, ErrEmptyPath
	}
	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("media: stat %s: %w", localPath, err)
	}

	img, err := imaging.Open(localPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	if maxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > maxDimension || b.Dy() > maxDimension {
			img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
		}
	}

	format, err := imaging.FormatFromFilename(localPath)
	if err != nil {
		format = imaging.PNG
	}
	meta, ok := formatMeta[format]
	if !ok {
		format = imaging.PNG
		meta = formatMeta[imaging.PNG]
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("media: encode image: %w", err)
	}

	return &preparedImage{data: buf.Bytes(), contentType: meta.contentType, ext: meta.ext}, nil
}
