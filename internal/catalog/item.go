// Package catalog describes the content items the portfolio serves and
// loads them from JSON or YAML files.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Item is a content item (photo, project, post). Every field except ID is
// optional; absent values are zero and contribute nothing to any score.
type Item struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt time.Time `json:"created,omitempty" yaml:"created,omitempty"`

	Likes     int `json:"likes,omitempty" yaml:"likes,omitempty"`
	Views     int `json:"views,omitempty" yaml:"views,omitempty"`
	Shares    int `json:"shares,omitempty" yaml:"shares,omitempty"`
	Favorites int `json:"favorites,omitempty" yaml:"favorites,omitempty"`
}

// record is the wire form of an Item in both JSON and YAML. It accepts
// the counter and date aliases found in exported records.
type record struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title,omitempty" yaml:"title,omitempty"`
	Category  string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Created   string   `json:"created,omitempty" yaml:"created,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`

	Likes       int `json:"likes,omitempty" yaml:"likes,omitempty"`
	LikesCount  int `json:"likes_count,omitempty" yaml:"likes_count,omitempty"`
	Views       int `json:"views,omitempty" yaml:"views,omitempty"`
	ViewsCount  int `json:"views_count,omitempty" yaml:"views_count,omitempty"`
	Shares      int `json:"shares,omitempty" yaml:"shares,omitempty"`
	SharesCount int `json:"shares_count,omitempty" yaml:"shares_count,omitempty"`
	Favorites   int `json:"favorites,omitempty" yaml:"favorites,omitempty"`
}

// item converts r, preferring each primary counter over its *_count alias
// when the primary is non-zero. An unparseable date leaves CreatedAt zero
// and is reported in the error; the returned Item is complete either way.
func (r record) item() (Item, error) {
	created := r.Created
	if created == "" {
		created = r.CreatedAt
	}
	createdAt, err := ParseTime(created)

	return Item{
		ID:        r.ID,
		Title:     r.Title,
		Category:  r.Category,
		Tags:      r.Tags,
		CreatedAt: createdAt,
		Likes:     firstNonZero(r.Likes, r.LikesCount),
		Views:     firstNonZero(r.Views, r.ViewsCount),
		Shares:    firstNonZero(r.Shares, r.SharesCount),
		Favorites: r.Favorites,
	}, err
}

// UnmarshalJSON decodes an item through the alias-tolerant record. An
// unparseable date is dropped.
func (i *Item) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*i, _ = r.item()
	return nil
}

// UnmarshalYAML is UnmarshalJSON for YAML documents.
func (i *Item) UnmarshalYAML(value *yaml.Node) error {
	var r record
	if err := value.Decode(&r); err != nil {
		return err
	}
	*i, _ = r.item()
	return nil
}

// MarshalJSON writes the item without the zero date or zero counters.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.record())
}

// MarshalYAML is MarshalJSON for YAML documents.
func (i Item) MarshalYAML() (any, error) {
	return i.record(), nil
}

func (i Item) record() record {
	r := record{
		ID:        i.ID,
		Title:     i.Title,
		Category:  i.Category,
		Tags:      i.Tags,
		Likes:     i.Likes,
		Views:     i.Views,
		Shares:    i.Shares,
		Favorites: i.Favorites,
	}
	if !i.CreatedAt.IsZero() {
		r.Created = i.CreatedAt.Format(time.RFC3339Nano)
	}
	return r
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// ParseTime accepts the timestamp layouts used by the content backend.
// An empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.000Z",
		"2006-01-02 15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// Load reads a catalog file. The format is chosen by extension: .yaml and
// .yml are YAML, anything else is JSON. Items without an ID are rejected.
// A date that cannot be parsed is logged at debug level and left zero.
//
//nolint:gocritic // zerolog.Logger is passed by value
func Load(path string, logger zerolog.Logger) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var records []record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", filepath.Base(path), err)
	}

	items := make([]Item, 0, len(records))
	for idx, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog item %d has no id", idx)
		}
		it, err := r.item()
		if err != nil {
			logger.Debug().
				Err(err).
				Str("item_id", r.ID).
				Str("catalog", filepath.Base(path)).
				Msg("ignoring unparseable created date")
		}
		items = append(items, it)
	}
	return items, nil
}

// Index maps item IDs to their position in items.
func Index(items []Item) map[string]int {
	idx := make(map[string]int, len(items))
	for i, it := range items {
		idx[it.ID] = i
	}
	return idx
}
