package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Slots is the size of the category palette.
const Slots = 8

type CategoryState struct {
	Slot     int       `json:"slot"`
	LastUsed time.Time `json:"last_used"`
}

// SlotCache hands out stable palette slots to categories. When every slot is
// taken the least recently used category gives up its slot.
type SlotCache struct {
	Path       string
	Categories map[string]*CategoryState `json:"categories"`
	dirty      bool
	now        func() time.Time
}

const (
	xdgAppName = "aide"
	cacheFile  = "category_colors.json"
)

func NewSlotCache() (*SlotCache, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return OpenSlotCache(filepath.Join(home, ".config", xdgAppName, cacheFile))
}

func OpenSlotCache(path string) (*SlotCache, error) {
	cache := &SlotCache{
		Path:       path,
		Categories: make(map[string]*CategoryState),
		now:        time.Now,
	}
	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *SlotCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Categories)
}

func (c *SlotCache) Save() error {
	if !c.dirty {
		return nil
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Printf("Error creating color cache directory: %v", err)
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating color cache file: %v", err)
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Categories)
	if err == nil {
		c.dirty = false
	}
	return err
}

// Slot returns the palette slot for category, 1 through Slots. An empty
// category gets slot 0, the neutral color.
func (c *SlotCache) Slot(category string) int {
	if category == "" {
		return 0
	}
	if state, ok := c.Categories[category]; ok {
		state.LastUsed = c.now()
		c.dirty = true
		return state.Slot
	}
	return c.assign(category)
}

func (c *SlotCache) assign(category string) int {
	used := make(map[int]bool)
	for _, s := range c.Categories {
		used[s.Slot] = true
	}
	for i := 1; i <= Slots; i++ {
		if !used[i] {
			c.Categories[category] = &CategoryState{Slot: i, LastUsed: c.now()}
			c.dirty = true
			return i
		}
	}

	var oldest string
	var oldestTime time.Time
	first := true
	for name, s := range c.Categories {
		if first || s.LastUsed.Before(oldestTime) {
			oldestTime = s.LastUsed
			oldest = name
			first = false
		}
	}

	recycled := c.Categories[oldest].Slot
	delete(c.Categories, oldest)
	c.Categories[category] = &CategoryState{Slot: recycled, LastUsed: c.now()}
	c.dirty = true
	return recycled
}
