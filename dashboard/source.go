package dashboard

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
)

// FallbackCoin is the coin whose background is used when a coin has none.
const FallbackCoin = "btc"

// DirSource loads "<id>-bg.png" files from a directory, scaled to the panel
// size. Decoded backgrounds are kept in a small LRU cache.
type DirSource struct {
	dir    string
	w, h   int
	logger *slog.Logger
	cache  *lru.Cache[string, *image.NRGBA]
}

var _ SceneSource = (*DirSource)(nil)

// NewDirSource returns a source reading from dir. logger can be nil.
func NewDirSource(dir string, w, h int, logger *slog.Logger) (*DirSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, *image.NRGBA](8)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &DirSource{dir: dir, w: w, h: h, logger: logger, cache: cache}, nil
}

// Path returns the background file of a coin.
func (s *DirSource) Path(coinID string) string {
	return filepath.Join(s.dir, coinID+"-bg.png")
}

// LoadBackground returns the coin's background, the FallbackCoin's when the
// coin has none, or a black frame when neither exists.
func (s *DirSource) LoadBackground(coinID string) (image.Image, error) {
	if img, ok := s.cache.Get(coinID); ok {
		return img, nil
	}

	img, err := s.open(coinID)
	if errors.Is(err, fs.ErrNotExist) && coinID != FallbackCoin {
		img, err = s.open(FallbackCoin)
	}
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("no background image, using black", "coin", coinID, "dir", s.dir)
		img = imaging.New(s.w, s.h, color.NRGBA{0, 0, 0, 255})
		err = nil
	}
	if err != nil {
		return nil, err
	}

	s.cache.Add(coinID, img)
	return img, nil
}

func (s *DirSource) open(coinID string) (*image.NRGBA, error) {
	path := s.Path(coinID)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	img := imaging.Resize(src, s.w, s.h, imaging.Lanczos)
	// Panels have no alpha; keep the colour channels as they are.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img, nil
}
