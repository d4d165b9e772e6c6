// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging stores uploaded images (site logo, featured images)
// under the uploads directory after normalizing them.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// MaxUploadSize is the largest accepted upload in bytes.
const MaxUploadSize = 5 << 20

// ErrUnsupportedFormat is returned for data that is not a JPEG, PNG, GIF or WebP image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned for uploads over MaxUploadSize.
var ErrTooLarge = errors.New("image exceeds upload size limit")

// Kind is an upload category; each kind has its own directory and bounds.
type Kind struct {
	Dir       string
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Upload kinds.
var (
	KindLogo     = Kind{Dir: "logos", MaxWidth: 600, MaxHeight: 300, Quality: 90}
	KindFeatured = Kind{Dir: "images", MaxWidth: 1600, MaxHeight: 1200, Quality: 85}
)

// Result describes a stored image.
type Result struct {
	URL      string
	FilePath string
	Width    int
	Height   int
	MimeType string
	Size     int64
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	uploadDir string
	urlPrefix string
}

// NewProcessor creates a processor writing below uploadDir. Stored files
// are addressed by URLs starting with urlPrefix, e.g. "/uploads".
func NewProcessor(uploadDir, urlPrefix string) *Processor {
	return &Processor{
		uploadDir: uploadDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

// Save decodes an uploaded image, applies its EXIF orientation, shrinks it
// to the bounds of kind and writes it under a fresh uuid name.
func (p *Processor) Save(r io.Reader, kind Kind) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > kind.MaxWidth || b.Dy() > kind.MaxHeight {
		img = imaging.Fit(img, kind.MaxWidth, kind.MaxHeight, imaging.Lanczos)
	}

	// Pure Go has no WebP encoder, so WebP input is stored as JPEG.
	if format == "webp" {
		format = "jpeg"
	}
	processed, err := encodeImage(img, format, kind.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	filename := uuid.NewString() + extension(format)
	filePath, err := p.saveImageFile(kind.Dir, filename, processed)
	if err != nil {
		return nil, err
	}

	final := img.Bounds()
	return &Result{
		URL:      path.Join(p.urlPrefix, kind.Dir, filename),
		FilePath: filePath,
		Width:    final.Dx(),
		Height:   final.Dy(),
		MimeType: formatToMimeType(format),
		Size:     int64(len(processed)),
	}, nil
}

// Delete removes a file previously returned by Save. URLs that do not point
// into the uploads directory are ignored.
func (p *Processor) Delete(url string) error {
	if p.urlPrefix == "" || !strings.HasPrefix(url, p.urlPrefix+"/") {
		return nil
	}
	rel := filepath.FromSlash(strings.TrimPrefix(url, p.urlPrefix+"/"))
	target, err := p.contained(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// IsSupportedType checks if a MIME type is supported for upload.
func IsSupportedType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// DetectMimeType detects the MIME type of image data.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "image/jpeg; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func extension(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

// contained resolves rel below uploadDir and rejects anything escaping it.
func (p *Processor) contained(rel string) (string, error) {
	clean := filepath.Clean(rel)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid upload path")
	}

	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absTarget := filepath.Join(absBase, clean)

	// Verify containment using filepath.Rel
	r, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(r, "..") || filepath.IsAbs(r) {
		return "", fmt.Errorf("path traversal detected")
	}
	return absTarget, nil
}

// saveImageFile creates the directory if needed and saves image data to a file.
func (p *Processor) saveImageFile(subDir, filename string, data []byte) (string, error) {
	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == ".." || safeFilename == "" {
		return "", fmt.Errorf("invalid filename")
	}

	dir, err := p.contained(subDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, safeFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return filePath, nil
}
