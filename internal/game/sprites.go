package game

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// decodeWorkers bounds how many images decode at once.
const decodeWorkers = 4

type spriteState int

const (
	spritePending spriteState = iota
	spriteLoaded
	spriteFailed
)

func (s spriteState) String() string {
	switch s {
	case spritePending:
		return "pending"
	case spriteLoaded:
		return "loaded"
	case spriteFailed:
		return "failed"
	}
	return "unknown"
}

type spriteEntry struct {
	state spriteState
	img   *ebiten.Image
	err   error
}

type decoded struct {
	key string
	img image.Image
	err error
}

// spriteCache loads images in the background. Every key is a future in one
// of three states; only Drain, called from Update, moves it out of pending.
// Renderers treat anything but loaded as "no image".
type spriteCache struct {
	entries map[string]*spriteEntry
	results chan decoded
	convert func(image.Image) *ebiten.Image
	log     *slog.Logger
}

func newSpriteCache(logger *slog.Logger) *spriteCache {
	return &spriteCache{
		entries: make(map[string]*spriteEntry),
		results: make(chan decoded, 64),
		convert: ebiten.NewImageFromImage,
		log:     logger,
	}
}

// Load starts decoding path for each key. Keys already known are skipped.
func (c *spriteCache) Load(ctx context.Context, files map[string]string) {
	todo := make(map[string]string, len(files))
	for key, path := range files {
		if _, ok := c.entries[key]; ok {
			continue
		}
		c.entries[key] = &spriteEntry{state: spritePending}
		todo[key] = path
	}
	if len(todo) == 0 {
		return
	}
	go func() {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(decodeWorkers)
		for key, path := range todo {
			g.Go(func() error {
				img, err := decodeFile(path)
				select {
				case c.results <- decoded{key: key, img: img, err: err}:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			c.log.Warn("sprite loading stopped", "error", err)
		}
	}()
}

// Drain applies finished decodes without blocking and returns how many
// arrived.
func (c *spriteCache) Drain() int {
	n := 0
	for {
		select {
		case r := <-c.results:
			n++
			e, ok := c.entries[r.key]
			if !ok {
				continue
			}
			if r.err != nil {
				e.state, e.err = spriteFailed, r.err
				c.log.Warn("sprite failed to load", "key", r.key, "error", r.err)
				continue
			}
			e.state, e.img = spriteLoaded, c.convert(r.img)
			c.log.Debug("sprite loaded", "key", r.key)
		default:
			return n
		}
	}
}

// Get returns the image for key once it has loaded.
func (c *spriteCache) Get(key string) (*ebiten.Image, bool) {
	e, ok := c.entries[key]
	if !ok || e.state != spriteLoaded {
		return nil, false
	}
	return e.img, true
}

// State reports the state of key. Unknown keys report failed.
func (c *spriteCache) State(key string) spriteState {
	e, ok := c.entries[key]
	if !ok {
		return spriteFailed
	}
	return e.state
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
