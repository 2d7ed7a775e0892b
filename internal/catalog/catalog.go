// Package catalog holds the immutable item tables the traveling cart draws
// from. Entry order is significant: the cart consumes one random draw per
// entry, in load order.
package catalog

import "math"

// NoID marks an entry whose key and fields carry no numeric id. Such entries
// are never eligible but still occupy a slot in the draw order.
const NoID = math.MinInt

// Object is one entry of the object table.
type Object struct {
	Key                   string
	ID                    int
	Name                  string
	Price                 int
	Category              int
	Type                  string
	ExcludeFromRandomSale bool
}

// Furniture is one entry of the furniture table.
type Furniture struct {
	Key                   string
	ID                    int
	Name                  string
	Price                 int
	ExcludeFromRandomSale bool
}

// Catalog is read-only after New and safe to share between goroutines.
type Catalog struct {
	Objects   []Object
	Furniture []Furniture

	byID   map[int]int // object id -> index of first entry
	byName map[string]int
}

// New indexes objects and furniture. The slices are retained, not copied.
func New(objects []Object, furniture []Furniture) *Catalog {
	c := &Catalog{
		Objects:   objects,
		Furniture: furniture,
		byID:      make(map[int]int, len(objects)),
		byName:    make(map[string]int, len(objects)),
	}
	for i, o := range objects {
		if o.ID == NoID {
			continue
		}
		if _, dup := c.byID[o.ID]; !dup {
			c.byID[o.ID] = i
		}
		if o.Name == "" {
			continue
		}
		if _, dup := c.byName[normalize(o.Name)]; !dup {
			c.byName[normalize(o.Name)] = o.ID
		}
	}
	return c
}

// Object returns the first object with the given id.
func (c *Catalog) Object(id int) (Object, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Object{}, false
	}
	return c.Objects[i], true
}

// Name returns the display name of an object id, or "" if unknown.
func (c *Catalog) Name(id int) string {
	o, _ := c.Object(id)
	return o.Name
}
