// Package scene reads the scene catalog: an ordered JSON object of scene id
// to its frames and the cloud files of every frame.
package scene

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/coreman2200/scenereel/internal/sequence"
)

var (
	ErrUnknownScene = errors.New("unknown scene")
	ErrMalformed    = errors.New("malformed scene catalog")
)

type Scene struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Frames []sequence.SceneFrame `json:"-"`
}

// CloudTypes lists the cloud types used anywhere in the scene, sorted.
func (s Scene) CloudTypes() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range s.Frames {
		for t := range f.Clouds {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Catalog keeps scenes in document order.
type Catalog struct {
	ids    []string
	scenes map[string]Scene
}

func (c *Catalog) IDs() []string { return slices.Clone(c.ids) }

func (c *Catalog) Len() int { return len(c.ids) }

func (c *Catalog) Get(id string) (Scene, error) {
	s, ok := c.scenes[id]
	if !ok {
		return Scene{}, fmt.Errorf("%w: %s", ErrUnknownScene, id)
	}
	return s, nil
}

func (c *Catalog) CloudTypes(id string) ([]string, error) {
	s, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	return s.CloudTypes(), nil
}

// Parse decodes a catalog document:
//
//	{ "<id>": { "name": "...", "frames": [
//	    { "timestamp": 0.5, "clouds": { "<type>": { "path": "..." } } } ] } }
//
// A cloud may also be given as a bare path string.
func Parse(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrMalformed)
	}

	c := &Catalog{scenes: map[string]Scene{}}
	var perr error
	root.ForEach(func(key, v gjson.Result) bool {
		s, err := parseScene(key.String(), v)
		if err != nil {
			perr = err
			return false
		}
		if _, dup := c.scenes[s.ID]; !dup {
			c.ids = append(c.ids, s.ID)
		}
		c.scenes[s.ID] = s
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return c, nil
}

func parseScene(id string, v gjson.Result) (Scene, error) {
	s := Scene{ID: id, Name: v.Get("name").String()}
	if s.Name == "" {
		s.Name = id
	}
	frames := v.Get("frames")
	if frames.Exists() && !frames.IsArray() {
		return Scene{}, fmt.Errorf("%w: scene %s: frames must be an array", ErrMalformed, id)
	}
	var ferr error
	frames.ForEach(func(i, f gjson.Result) bool {
		ts := f.Get("timestamp")
		if ts.Type != gjson.Number {
			ferr = fmt.Errorf("%w: scene %s frame %d: timestamp must be a number", ErrMalformed, id, i.Int())
			return false
		}
		sf := sequence.SceneFrame{Timestamp: ts.Float(), Clouds: map[string]string{}}
		f.Get("clouds").ForEach(func(typ, cl gjson.Result) bool {
			p := cl.String()
			if cl.IsObject() {
				p = cl.Get("path").String()
			}
			if p == "" {
				ferr = fmt.Errorf("%w: scene %s frame %d: cloud %s has no path", ErrMalformed, id, i.Int(), typ.String())
				return false
			}
			sf.Clouds[typ.String()] = p
			return true
		})
		if ferr != nil {
			return false
		}
		s.Frames = append(s.Frames, sf)
		return true
	})
	if ferr != nil {
		return Scene{}, ferr
	}
	return s, nil
}

func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Store holds the current catalog; readers never block reloads.
type Store struct {
	p atomic.Pointer[Catalog]
}

func NewStore(c *Catalog) *Store {
	s := &Store{}
	if c == nil {
		c = &Catalog{scenes: map[string]Scene{}}
	}
	s.p.Store(c)
	return s
}

func (s *Store) Load() *Catalog { return s.p.Load() }

func (s *Store) Swap(c *Catalog) { s.p.Store(c) }
