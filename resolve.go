package modelstate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ErrInvalidDescriptor is returned when a descriptor does not resolve to a Model.
var ErrInvalidDescriptor = errors.New("modelstate: invalid model descriptor")

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Model{}
)

// Register makes a model constructor resolvable by name.
// It panics if name is empty, fn is nil, or name is already registered.
func Register(name string, fn func() Model) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if strings.TrimSpace(name) == "" {
		panic("modelstate: Register with empty name")
	}
	if fn == nil {
		panic("modelstate: Register constructor is nil for " + name)
	}
	if _, dup := registry[name]; dup {
		panic("modelstate: Register called twice for " + name)
	}
	registry[name] = fn
}

var modelType = reflect.TypeOf((*Model)(nil)).Elem()

// Resolve turns a descriptor into a Model instance.
//
// A descriptor is a live Model, a typed nil pointer such as (*User)(nil),
// a reflect.Type, or a name registered with Register. Type descriptors are
// instantiated with their zero value.
func Resolve(target any) (Model, error) {
	switch v := target.(type) {
	case nil:
		return nil, fmt.Errorf("modelstate: nil target: %w", ErrInvalidDescriptor)
	case string:
		registryMu.RLock()
		fn, ok := registry[v]
		registryMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("modelstate: model %q is not registered: %w", v, ErrInvalidDescriptor)
		}
		m := fn()
		if isNilPointer(m) {
			return nil, fmt.Errorf("modelstate: constructor for %q returned nil: %w", v, ErrInvalidDescriptor)
		}
		return m, nil
	case reflect.Type:
		return construct(v)
	}

	val := reflect.ValueOf(target)
	if val.Kind() == reflect.Pointer && val.IsNil() {
		return construct(val.Type())
	}
	if m, ok := target.(Model); ok {
		return m, nil
	}
	if val.Kind() == reflect.Struct {
		ptr := reflect.New(val.Type())
		ptr.Elem().Set(val)
		if m, ok := ptr.Interface().(Model); ok {
			return m, nil
		}
	}
	return nil, fmt.Errorf("modelstate: %T is not a model: %w", target, ErrInvalidDescriptor)
}

func construct(typ reflect.Type) (Model, error) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct || !reflect.PointerTo(typ).Implements(modelType) {
		return nil, fmt.Errorf("modelstate: type %v is not a model: %w", typ, ErrInvalidDescriptor)
	}
	return reflect.New(typ).Interface().(Model), nil
}
