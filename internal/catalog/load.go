package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrBadDocument = errors.New("catalog document must be a JSON object keyed by item id")

// furniture string records are slash-delimited:
// name/type/tilesheet size/bounding box/rotations/price/placement/display name/sprite/texture/off limits/tags
const (
	furnitureNameField     = 0
	furniturePriceField    = 5
	furnitureOffLimitField = 10
)

// Load reads the object table and, if furniturePath is non-empty, the
// furniture table.
func Load(objectsPath, furniturePath string) (*Catalog, error) {
	data, err := os.ReadFile(objectsPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", objectsPath, err)
	}
	objects, err := ParseObjects(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", objectsPath, err)
	}

	var furniture []Furniture
	if furniturePath != "" {
		data, err := os.ReadFile(furniturePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", furniturePath, err)
		}
		furniture, err = ParseFurniture(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", furniturePath, err)
		}
	}
	return New(objects, furniture), nil
}

// ParseObjects decodes an object table in document order. Field names are
// accepted in either case, and the exclusion flag also under "offlimits".
func ParseObjects(json string) ([]Object, error) {
	root, err := parseRoot(json)
	if err != nil {
		return nil, err
	}
	var out []Object
	root.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		id, ok := intField(v, "id", "Id")
		if !ok {
			id = idFromKey(key)
		}
		price, _ := intField(v, "price", "Price")
		category, _ := intField(v, "category", "Category")
		exclude, _ := boolField(v, "ExcludeFromRandomSale", "excludeFromRandomSale", "offlimits")
		out = append(out, Object{
			Key:                   key,
			ID:                    id,
			Name:                  stringField(v, "name", "Name"),
			Price:                 price,
			Category:              category,
			Type:                  stringField(v, "type", "Type"),
			ExcludeFromRandomSale: exclude,
		})
		return true
	})
	return out, nil
}

// ParseFurniture decodes a furniture table in document order. Values may be
// the game's slash-delimited record strings or objects.
func ParseFurniture(json string) ([]Furniture, error) {
	root, err := parseRoot(json)
	if err != nil {
		return nil, err
	}
	var out []Furniture
	root.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		f := Furniture{Key: key, ID: idFromKey(key)}
		if v.Type == gjson.String {
			fields := strings.Split(v.String(), "/")
			f.Name = fields[furnitureNameField]
			if len(fields) > furniturePriceField {
				f.Price, _ = strconv.Atoi(strings.TrimSpace(fields[furniturePriceField]))
			}
			if len(fields) > furnitureOffLimitField {
				f.ExcludeFromRandomSale, _ = strconv.ParseBool(strings.TrimSpace(fields[furnitureOffLimitField]))
			}
		} else {
			if id, ok := intField(v, "id", "Id"); ok {
				f.ID = id
			}
			f.Name = stringField(v, "name", "Name")
			f.Price, _ = intField(v, "price", "Price")
			f.ExcludeFromRandomSale, _ = boolField(v, "ExcludeFromRandomSale", "excludeFromRandomSale", "offlimits")
		}
		out = append(out, f)
		return true
	})
	return out, nil
}

func parseRoot(json string) (gjson.Result, error) {
	if !gjson.Valid(json) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrBadDocument)
	}
	root := gjson.Parse(json)
	if !root.IsObject() {
		return gjson.Result{}, ErrBadDocument
	}
	return root, nil
}

func intField(v gjson.Result, names ...string) (int, bool) {
	for _, n := range names {
		r := v.Get(n)
		switch r.Type {
		case gjson.Number:
			return int(r.Int()), true
		case gjson.String:
			if i, err := strconv.Atoi(strings.TrimSpace(r.Str)); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

func stringField(v gjson.Result, names ...string) string {
	for _, n := range names {
		if r := v.Get(n); r.Type == gjson.String {
			return r.Str
		}
	}
	return ""
}

func boolField(v gjson.Result, names ...string) (bool, bool) {
	for _, n := range names {
		r := v.Get(n)
		switch r.Type {
		case gjson.True:
			return true, true
		case gjson.False:
			return false, true
		case gjson.String:
			if b, err := strconv.ParseBool(r.Str); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

// idFromKey parses keys like "485" or "_485". Keys without a numeric tail
// yield NoID.
func idFromKey(key string) int {
	start := 0
	for start < len(key) && (key[start] < '0' || key[start] > '9') && key[start] != '-' {
		start++
	}
	if start >= len(key) {
		return NoID
	}
	id, err := strconv.Atoi(key[start:])
	if err != nil {
		return NoID
	}
	return id
}
