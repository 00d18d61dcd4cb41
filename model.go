package modelstate

import (
	"maps"
	"reflect"
)

// Model is the state a host ORM model must expose to be summarized.
type Model interface {
	Attributes() map[string]any  // current attributes, hidden ones included
	RawOriginal() map[string]any // attributes as loaded from storage
	Dirty() map[string]any       // attributes changed since load
	Exists() bool                // persisted
	WasRecentlyCreated() bool    // inserted during the current operation
}

// HiddenAttributer declares the attributes that must never be rendered raw.
type HiddenAttributer interface {
	HiddenAttributes() []string
}

// Timestamper overrides the default created_at / updated_at column names.
// An empty name means the model has no such column.
type Timestamper interface {
	CreatedAtColumn() string
	UpdatedAtColumn() string
}

// KeyTyper declares the primary key type of a model ("int" by default).
type KeyTyper interface {
	KeyType() string
}

// KeyNamer declares the primary key column of a model ("id" by default).
type KeyNamer interface {
	KeyName() string
}

// TableNamer provides a custom table name for a model.
type TableNamer interface {
	TableName() string
}

const (
	DefaultCreatedAt = "created_at"
	DefaultUpdatedAt = "updated_at"
	DefaultKeyName   = "id"
)

// HasUlids is satisfied by models embedding Ulids.
type HasUlids interface{ usesUlids() }

// HasUuids is satisfied by models embedding Uuids.
type HasUuids interface{ usesUuids() }

// AsPivot is satisfied by models embedding PivotTrait.
type AsPivot interface{ usesAsPivot() }

// Ulids marks a model whose keys are ULIDs.
type Ulids struct{}

func (Ulids) usesUlids() {}

// Uuids marks a model whose keys are UUIDs.
type Uuids struct{}

func (Uuids) usesUuids() {}

// PivotTrait marks a model that behaves as an intermediate (join) table record.
type PivotTrait struct{}

func (PivotTrait) usesAsPivot() {}

// Pivot is the base type for intermediate table models.
type Pivot struct {
	Record
	PivotTrait
}

func (*Pivot) pivotBase() {}

type pivotModel interface{ pivotBase() }

// Record is an in-memory Model implementation meant to be embedded in host models.
//
//	type User struct {
//		modelstate.Record
//	}
type Record struct {
	attributes      map[string]any
	original        map[string]any
	hidden          []string
	exists          bool
	recentlyCreated bool
}

// Get returns the current value of an attribute.
func (r *Record) Get(key string) any {
	return r.attributes[key]
}

// Set assigns a single attribute.
func (r *Record) Set(key string, v any) {
	if r.attributes == nil {
		r.attributes = map[string]any{}
	}
	r.attributes[key] = v
}

// Fill assigns every attribute in attrs.
func (r *Record) Fill(attrs map[string]any) {
	for k, v := range attrs {
		r.Set(k, v)
	}
}

// Load replaces the attributes with a persisted row, as a query would hydrate it.
func (r *Record) Load(attrs map[string]any) {
	r.attributes = maps.Clone(attrs)
	r.SyncOriginal()
	r.exists = true
	r.recentlyCreated = false
}

// SyncOriginal makes the current attributes the new original state.
func (r *Record) SyncOriginal() {
	r.original = maps.Clone(r.attributes)
}

// MarkCreated flags the record as inserted during the current operation.
func (r *Record) MarkCreated() {
	r.SyncOriginal()
	r.exists = true
	r.recentlyCreated = true
}

// Hide sets the permanent hidden attribute names.
func (r *Record) Hide(names ...string) {
	r.hidden = append([]string(nil), names...)
}

func (r *Record) Attributes() map[string]any {
	return maps.Clone(r.attributes)
}

func (r *Record) RawOriginal() map[string]any {
	return maps.Clone(r.original)
}

// Dirty returns attributes that are absent from, or differ from, the original state.
func (r *Record) Dirty() map[string]any {
	dirty := map[string]any{}
	for k, v := range r.attributes {
		orig, ok := r.original[k]
		if !ok || !reflect.DeepEqual(orig, v) {
			dirty[k] = v
		}
	}
	return dirty
}

func (r *Record) Exists() bool {
	return r.exists
}

func (r *Record) WasRecentlyCreated() bool {
	return r.recentlyCreated
}

func (r *Record) HiddenAttributes() []string {
	return append([]string(nil), r.hidden...)
}

// ModelExists reports whether v is a persisted Model.
func ModelExists(v any) bool {
	m, ok := v.(Model)
	return ok && !isNilPointer(v) && m.Exists()
}

func hiddenAttributes(m Model) []string {
	if h, ok := m.(HiddenAttributer); ok {
		return h.HiddenAttributes()
	}
	return nil
}

func timestampColumns(m Model) (createdAt, updatedAt string) {
	if ts, ok := m.(Timestamper); ok {
		return ts.CreatedAtColumn(), ts.UpdatedAtColumn()
	}
	return DefaultCreatedAt, DefaultUpdatedAt
}

func keyName(m Model) string {
	if kn, ok := m.(KeyNamer); ok && kn.KeyName() != "" {
		return kn.KeyName()
	}
	return DefaultKeyName
}

func isNilPointer(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
