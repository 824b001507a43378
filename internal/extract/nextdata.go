package extract

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
	"github.com/tidwall/gjson"
)

const (
	// NextDataSelector locates the embedded initial-state payload.
	NextDataSelector = "script#__NEXT_DATA__"

	// MaxWalkDepth bounds the traversal of the embedded payload. The root is
	// depth 0; only objects at depth MaxWalkDepth or less are searched, so
	// the deepest object inspected sits at MaxWalkDepth+1.
	MaxWalkDepth = 10

	unknownProvider = "unknown"
)

// NextData reads model definitions from the embedded __NEXT_DATA__ JSON.
type NextData struct{}

func (NextData) Name() string { return "next_data" }

func (NextData) Extract(body []byte) []models.ModelInfo {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		L_debug("extract: html parse failed", "error", err)
		return nil
	}

	sel := doc.Find(NextDataSelector).First()
	if sel.Length() == 0 {
		L_trace("extract: no embedded data script")
		return nil
	}

	payload := sel.Text()
	if !gjson.Valid(payload) {
		L_debug("extract: embedded data is not valid JSON", "bytes", len(payload))
		return nil
	}

	found := walk(gjson.Parse(payload), MaxWalkDepth)
	L_debug("extract: embedded data scanned", "models", len(found))
	return found
}

type walkItem struct {
	v     gjson.Result
	depth int
}

// walk visits root depth-first in document order, collecting a model from
// every object that defines one. An object at depth d is inspected while
// d <= maxDepth+1 and descended into while d <= maxDepth, so the limit
// bounds the parents that are searched. Arrays do not count as a level:
// their objects take the depth of the array's owner plus one.
func walk(root gjson.Result, maxDepth int) []models.ModelInfo {
	var out []models.ModelInfo
	work := []walkItem{{v: root}}

	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		var children []walkItem
		switch {
		case it.v.IsObject():
			if it.depth > maxDepth+1 {
				continue
			}
			if m, ok := modelFromObject(it.v); ok {
				out = append(out, m)
			}
			if it.depth > maxDepth {
				continue
			}
			it.v.ForEach(func(_, value gjson.Result) bool {
				if value.IsObject() || value.IsArray() {
					children = append(children, walkItem{v: value, depth: it.depth + 1})
				}
				return true
			})
		case it.v.IsArray():
			it.v.ForEach(func(_, value gjson.Result) bool {
				if value.IsObject() || value.IsArray() {
					children = append(children, walkItem{v: value, depth: it.depth})
				}
				return true
			})
		}

		// Push in reverse so the first child is popped first.
		for i := len(children) - 1; i >= 0; i-- {
			work = append(work, children[i])
		}
	}
	return Merge(out)
}

// field returns the member named key. Duplicate keys resolve to the last
// one, as encoding/json does.
func field(obj gjson.Result, key string) (gjson.Result, bool) {
	var found gjson.Result
	var ok bool
	obj.ForEach(func(k, value gjson.Result) bool {
		if k.Str == key {
			found, ok = value, true
		}
		return true
	})
	return found, ok
}

func stringField(obj gjson.Result, key string) (string, bool) {
	v, ok := field(obj, key)
	if !ok || v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

func boolField(obj gjson.Result, key string) (bool, bool) {
	v, ok := field(obj, key)
	if !ok || (v.Type != gjson.True && v.Type != gjson.False) {
		return false, false
	}
	return v.Bool(), true
}

func modelFromObject(obj gjson.Result) (models.ModelInfo, bool) {
	id, _ := stringField(obj, "identifier")
	if id == "" {
		id, _ = stringField(obj, "modelId")
	}
	if id == "" || !models.IsValidIdentifier(id) {
		return models.ModelInfo{}, false
	}

	m := models.ModelInfo{
		Identifier:        id,
		Name:              models.InferName(id),
		Mode:              models.DefaultMode,
		Provider:          unknownProvider,
		SupportsReasoning: models.SupportsReasoning(id),
	}
	if name, ok := stringField(obj, "name"); ok && name != "" {
		m.Name = name
	}
	if desc, ok := stringField(obj, "description"); ok {
		m.Description = desc
	}
	if mode, ok := stringField(obj, "mode"); ok && mode != "" {
		m.Mode = mode
	}
	if provider, ok := stringField(obj, "provider"); ok && provider != "" {
		m.Provider = provider
	}
	if pro, ok := boolField(obj, "isPro"); ok {
		m.IsPro = pro
	}
	return m, true
}
