// Package assets publishes static files and post attachments into the
// output directory, shrinking oversized raster images on the way.
package assets

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const jpegQuality = 85

// CopyDir recursively copies the contents of src into dst. A missing src is
// not an error.
func CopyDir(src, dst string) (int, error) {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return 0, nil
	}
	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			return nil
		}
		if err := CopyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

// CopyFile copies a single file, creating dst's parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// Publisher copies post attachments, downscaling images wider than
// MaxWidth.
type Publisher struct {
	MaxWidth int
}

// Publish writes src to dst. It reports whether the file was resized.
func (p Publisher) Publish(src, dst string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(src))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return false, CopyFile(src, dst)
	}

	f, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", src, err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil || cfg.Width <= p.MaxWidth {
		// Undecodable files are published untouched.
		return false, CopyFile(src, dst)
	}

	if err := p.resize(src, dst, ext); err != nil {
		return false, err
	}
	return true, nil
}

func (p Publisher) resize(src, dst, ext string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image %s: %w", src, err)
	}

	b := img.Bounds()
	h := b.Dy() * p.MaxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	scaled := image.NewRGBA(image.Rect(0, 0, p.MaxWidth, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if ext == ".png" {
		err = png.Encode(out, scaled)
	} else {
		err = jpeg.Encode(out, scaled, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		out.Close()
		return fmt.Errorf("encode image %s: %w", dst, err)
	}
	return out.Close()
}
