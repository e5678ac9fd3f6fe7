package catalog

import (
	"reflect"
	"strconv"

	"github.com/gamedex/catalog-cli/internal/model"
)

// Patch carries newly fetched values for the rows selected by Key.
// Fields must be a struct whose exported fields mirror model.Game
// field names; pointer fields that are nil are skipped entirely, so a
// patch can never null out data the catalogue already trusts.
type Patch struct {
	Key    string
	Fields any
}

// KeyFunc extracts a merge key from a row. It returns false when the
// row has no key for this merge (e.g. no source link yet), in which
// case no patch can address it.
type KeyFunc func(*model.Game) (string, bool)

// KeyByID keys a merge on the game id; a patch addressed to an id is
// applied to every platform row of that game.
func KeyByID(g *model.Game) (string, bool) {
	return strconv.FormatInt(g.ID, 10), true
}

// KeyByStringPtr keys a merge on a source-native link column.
func KeyByStringPtr(field func(*model.Game) *string) KeyFunc {
	return func(g *model.Game) (string, bool) {
		p := field(g)
		if p == nil || *p == "" {
			return "", false
		}
		return *p, true
	}
}

// Merge overlays patches onto the table: a left join of patches onto
// rows on keyOf. For every patch field that is non-nil the patched
// value wins; nil fields leave the base value untouched. Rows without
// a matching patch are unchanged, and patch keys absent from the table
// are dropped. Patch keys must be unique.
func Merge(t *Table, keyOf KeyFunc, patches []Patch) {
	if len(patches) == 0 {
		return
	}
	byKey := make(map[string]any, len(patches))
	for _, p := range patches {
		byKey[p.Key] = p.Fields
	}
	for _, g := range t.Rows {
		key, ok := keyOf(g)
		if !ok {
			continue
		}
		if fields, ok := byKey[key]; ok {
			Overlay(g, fields)
		}
	}
}

// Overlay copies every non-nil exported field of patch onto the
// same-named field of dst. Patch fields are pointers (or slices) to
// model.Game field types; a nil pointer or nil slice means "no new
// information" and is skipped. A *model.MatchState carrying
// MatchUnknown is also skipped: once an identity has been attempted it
// is never reset.
func Overlay(dst *model.Game, patch any) {
	pv := reflect.ValueOf(patch)
	if pv.Kind() == reflect.Pointer {
		pv = pv.Elem()
	}
	if pv.Kind() != reflect.Struct {
		return
	}
	dv := reflect.ValueOf(dst).Elem()
	pt := pv.Type()
	for i := 0; i < pt.NumField(); i++ {
		f := pt.Field(i)
		if !f.IsExported() {
			continue
		}
		val := pv.Field(i)
		target := dv.FieldByName(f.Name)
		if !target.IsValid() || !target.CanSet() {
			continue
		}
		switch val.Kind() {
		case reflect.Pointer:
			if val.IsNil() {
				continue
			}
			if ms, ok := val.Interface().(*model.MatchState); ok && *ms == model.MatchUnknown {
				continue
			}
			if target.Type() == val.Type() {
				// Copy the pointee so later mutation of the patch
				// cannot alias into the table.
				fresh := reflect.New(val.Type().Elem())
				fresh.Elem().Set(val.Elem())
				target.Set(fresh)
			} else if target.Type() == val.Type().Elem() {
				target.Set(val.Elem())
			}
		case reflect.Slice:
			if val.IsNil() {
				continue
			}
			if target.Type() == val.Type() {
				target.Set(val)
			}
		default:
			// Non-pointer patch fields cannot express "absent" and are
			// not supported; ignore them rather than clobbering data.
		}
	}
}
