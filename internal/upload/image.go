// Package upload validates and normalizes images before they are forwarded
// to the backend.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Processor bounds upload size and downscales oversized images
type Processor struct {
	maxBytes     int64
	maxDimension int
}

func NewProcessor(maxBytes int64, maxDimension int) *Processor {
	return &Processor{maxBytes: maxBytes, maxDimension: maxDimension}
}

func (p *Processor) MaxBytes() int64 {
	return p.maxBytes
}

// FromMultipart reads and processes one uploaded file
func (p *Processor) FromMultipart(field string, fh *multipart.FileHeader) (*models.FileUpload, error) {
	if p.maxBytes > 0 && fh.Size > p.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes: %w", field, fh.Size, models.ErrPayloadTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	var r io.Reader = f
	if p.maxBytes > 0 {
		r = io.LimitReader(f, p.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return p.Process(field, fh.Filename, data)
}

// Process sniffs data, rejects non-images and fits larger images within
// maxDimension on both sides. WebP is forwarded as-is.
func (p *Processor) Process(field, filename string, data []byte) (*models.FileUpload, error) {
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", field, p.maxBytes, models.ErrPayloadTooLarge)
	}

	mtype := mimetype.Detect(data)
	contentType := mtype.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("%s is %s: %w", field, contentType, models.ErrUnsupportedMedia)
	}

	out := &models.FileUpload{
		Field:       field,
		Filename:    UniqueFilename(replaceExt(filename, mtype.Extension())),
		ContentType: contentType,
		Data:        data,
	}

	if contentType == "image/webp" || p.maxDimension <= 0 {
		return out, nil
	}

	resized, err := p.fit(data, mtype.Extension())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	if resized != nil {
		out.Data = resized
	}
	return out, nil
}

// fit returns nil when the image already fits
func (p *Processor) fit(data []byte, ext string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", models.ErrUnsupportedMedia)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= p.maxDimension && bounds.Dy() <= p.maxDimension {
		return nil, nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("image format %s: %w", ext, models.ErrUnsupportedMedia)
	}

	var buf bytes.Buffer
	fitted := imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	if err := imaging.Encode(&buf, fitted, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// UniqueFilename prefixes a sanitized name with the date and a uuid
func UniqueFilename(original string) string {
	base := filepath.Base(original)
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	safe := unsafeChars.ReplaceAllString(base, "_")
	return fmt.Sprintf("%s-%s-%s", time.Now().Format("20060102"), uuid.NewString(), safe)
}

func replaceExt(filename, ext string) string {
	if ext == "" {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}
