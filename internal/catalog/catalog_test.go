package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const objectsJSON = `{
  "_20": {"Name": "Leek", "Price": 60, "Category": -75, "Type": "Basic"},
  "16": {"name": "Wild Horseradish", "price": "50", "category": -81, "type": "Basic", "offlimits": "true"},
  "SmokedFish": {"Name": "Smoked Fish", "Price": 0, "Category": -7, "Type": "Basic"},
  "446": {"Id": 446, "Name": "Rabbit's Foot", "Price": 565, "Category": -18, "Type": "Basic", "ExcludeFromRandomSale": false},
  "433": {"Name": "Coffee Bean", "Price": 15, "Category": -74, "Type": "Seeds", "excludeFromRandomSale": true}
}`

const furnitureJSON = `{
  "0": "Oak Chair/chair/-1/-1/4/350/-1/Oak Chair",
  "1226": "Furniture Catalogue/decor/2 1/2 1/1/200000/2/Furniture Catalogue/0/Furniture/true",
  "Big": {"id": 1700, "name": "Big Table", "price": 400, "offlimits": false}
}`

func TestParseObjectsKeepsOrder(t *testing.T) {
	objs, err := ParseObjects(objectsJSON)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs := []int{20, 16, NoID, 446, 433}
	if len(objs) != len(wantIDs) {
		t.Fatalf("got %d objects, want %d", len(objs), len(wantIDs))
	}
	for i, id := range wantIDs {
		if objs[i].ID != id {
			t.Errorf("objs[%d].ID = %d, want %d", i, objs[i].ID, id)
		}
	}
	if objs[1].Price != 50 || !objs[1].ExcludeFromRandomSale || objs[1].Name != "Wild Horseradish" {
		t.Errorf("lowercase fields not decoded: %+v", objs[1])
	}
	if objs[3].Category != -18 || objs[3].ExcludeFromRandomSale {
		t.Errorf("objs[3] = %+v", objs[3])
	}
	if !objs[4].ExcludeFromRandomSale || objs[4].Type != "Seeds" {
		t.Errorf("objs[4] = %+v", objs[4])
	}
	if objs[2].Key != "SmokedFish" {
		t.Errorf("objs[2].Key = %q", objs[2].Key)
	}
}

func TestParseFurniture(t *testing.T) {
	fs, err := ParseFurniture(furnitureJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 3 {
		t.Fatalf("got %d entries", len(fs))
	}
	if fs[0].ID != 0 || fs[0].Price != 350 || fs[0].ExcludeFromRandomSale || fs[0].Name != "Oak Chair" {
		t.Errorf("fs[0] = %+v", fs[0])
	}
	if fs[1].ID != 1226 || fs[1].Price != 200000 || !fs[1].ExcludeFromRandomSale {
		t.Errorf("fs[1] = %+v", fs[1])
	}
	if fs[2].ID != 1700 || fs[2].Price != 400 {
		t.Errorf("fs[2] = %+v", fs[2])
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, doc := range []string{`[1,2]`, `{"a":`, `"x"`} {
		if _, err := ParseObjects(doc); !errors.Is(err, ErrBadDocument) {
			t.Errorf("ParseObjects(%s): err = %v", doc, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	op := filepath.Join(dir, "objects.json")
	fp := filepath.Join(dir, "furniture.json")
	if err := os.WriteFile(op, []byte(objectsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fp, []byte(furnitureJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(op, fp)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Objects) != 5 || len(c.Furniture) != 3 {
		t.Errorf("loaded %d objects, %d furniture", len(c.Objects), len(c.Furniture))
	}
	if o, ok := c.Object(446); !ok || o.Name != "Rabbit's Foot" {
		t.Errorf("Object(446) = %+v, %v", o, ok)
	}

	if _, err := Load(filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLookup(t *testing.T) {
	objs, err := ParseObjects(objectsJSON)
	if err != nil {
		t.Fatal(err)
	}
	c := New(objs, nil)

	for _, name := range []string{"Rabbit's Foot", "rabbits_foot", "RABBITS FOOT"} {
		if id, err := c.Lookup(name); err != nil || id != 446 {
			t.Errorf("Lookup(%q) = %d, %v", name, id, err)
		}
	}

	_, err = c.Lookup("Cofee Bean")
	if !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), `"Coffee Bean"`) {
		t.Errorf("no suggestion in %q", err)
	}

	_, err = c.Lookup("Prismatic Shard")
	if !errors.Is(err, ErrUnknownItem) || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResolve(t *testing.T) {
	objs, _ := ParseObjects(objectsJSON)
	c := New(objs, nil)
	cases := map[string]int{"433": 433, "(O)485": 485, " Leek ": 20}
	for in, want := range cases {
		if got, err := c.Resolve(in); err != nil || got != want {
			t.Errorf("Resolve(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
}
