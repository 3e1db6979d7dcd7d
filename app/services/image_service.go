package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/pkg/bind"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
	"github.com/shashiranjanraj/commandes/pkg/storage"
)

// ImageDir is the disk prefix order pictures are stored under.
const ImageDir = "commandes"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageService writes uploaded pictures to a storage disk and removes them.
type ImageService struct {
	disk storage.Disk
	now  func() time.Time
}

func NewImageService(disk storage.Disk) *ImageService {
	return &ImageService{disk: disk, now: time.Now}
}

// Store writes every file and returns one image per file, in order. If any
// write fails the files already written are removed and the error returned.
func (s *ImageService) Store(ctx context.Context, files []bind.File) ([]models.OrderImage, error) {
	images := make([]models.OrderImage, 0, len(files))
	for _, f := range files {
		key := path.Join(ImageDir, s.uniqueName(f))
		if err := s.put(ctx, key, f); err != nil {
			s.Remove(ctx, images...)
			return nil, err
		}
		metrics.ImagesStored.Inc()
		images = append(images, models.OrderImage{URL: s.disk.URL(key), Name: displayName(f.Filename)})
	}
	return images, nil
}

func (s *ImageService) put(ctx context.Context, key string, f bind.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("services: open upload %s: %w", f.Filename, err)
	}
	defer rc.Close()

	if err := s.disk.Put(ctx, key, rc, f.ContentType); err != nil {
		return fmt.Errorf("services: store upload %s: %w", f.Filename, err)
	}
	return nil
}

// Remove deletes the stored file behind each image, continuing past
// failures. The returned errors are for logging only.
func (s *ImageService) Remove(ctx context.Context, images ...models.OrderImage) []error {
	var errs []error
	for _, img := range images {
		if err := s.disk.Delete(ctx, Key(img.URL)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Key maps a public image URL back to its disk key.
func Key(url string) string {
	return ImageDir + "/" + path.Base(url)
}

// uniqueName builds "<unix-millis>-<random><ext>". The extension comes from
// the sniffed content type only; the client filename never reaches the disk.
func (s *ImageService) uniqueName(f bind.File) string {
	ext := extensions[f.ContentType]
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), random, ext)
}

func displayName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	for utf8.RuneCountInString(name) > 255 {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name
}
