package modelstate

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// KeyType describes how a model generates its primary key.
type KeyType string

const (
	KeyInt    KeyType = "int"
	KeyString KeyType = "string"
	KeyUUID   KeyType = "uuid"
	KeyULID   KeyType = "ulid"
)

// ModelKeyType returns the key type of the model described by target.
// ULID models win over UUID models; otherwise the model's declared key type is used.
func ModelKeyType(target any) (KeyType, error) {
	m, err := Resolve(target)
	if err != nil {
		return "", err
	}
	return keyType(m), nil
}

func keyType(m Model) KeyType {
	if _, ok := m.(HasUlids); ok {
		return KeyULID
	}
	if _, ok := m.(HasUuids); ok {
		return KeyUUID
	}
	if kt, ok := m.(KeyTyper); ok && kt.KeyType() != "" {
		return KeyType(kt.KeyType())
	}
	return KeyInt
}

// NewUniqueID generates a key for a unique-id model.
// UUID keys are time ordered (version 7) so they index like ULIDs.
func NewUniqueID(kt KeyType) (string, error) {
	switch kt {
	case KeyUUID:
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("modelstate: failed to generate uuid: %w", err)
		}
		return id.String(), nil
	case KeyULID:
		id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
		if err != nil {
			return "", fmt.Errorf("modelstate: failed to generate ulid: %w", err)
		}
		return id.String(), nil
	default:
		return "", fmt.Errorf("modelstate: key type %q has no unique id generator", kt)
	}
}

// IsPivotModel reports whether target describes an intermediate table model.
func IsPivotModel(target any) (bool, error) {
	m, err := Resolve(target)
	if err != nil {
		return false, err
	}
	if _, ok := m.(pivotModel); ok {
		return true, nil
	}
	_, ok := m.(AsPivot)
	return ok, nil
}
