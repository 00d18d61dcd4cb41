package modelstate

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelKeyType(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   any
		want KeyType
	}{
		{name: "default", in: &User{}, want: KeyInt},
		{name: "uuid trait", in: (*Article)(nil), want: KeyUUID},
		{name: "ulid trait", in: reflect.TypeOf(Token{}), want: KeyULID},
		{name: "ulid checked before uuid", in: &Hybrid{}, want: KeyULID},
		{name: "inherited trait", in: (*Admin)(nil), want: KeyUUID},
		{name: "declared key type", in: &Account{}, want: KeyString},
		{name: "registered name", in: registeredUser, want: KeyUUID},
		{name: "struct value", in: Token{}, want: KeyULID},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ModelKeyType(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsPivotModel(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   any
		want bool
	}{
		{name: "pivot base", in: &Pivot{}, want: true},
		{name: "embeds pivot", in: (*RoleUser)(nil), want: true},
		{name: "pivot trait", in: reflect.TypeOf(Membership{}), want: true},
		{name: "plain model", in: &User{}, want: false},
		{name: "uuid model", in: (*Article)(nil), want: false},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := IsPivotModel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInvalidDescriptor(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   any
	}{
		{name: "nil", in: nil},
		{name: "unregistered name", in: "nope"},
		{name: "struct without model", in: notAModel{}},
		{name: "nil pointer without model", in: (*notAModel)(nil)},
		{name: "non struct type", in: reflect.TypeOf(0)},
		{name: "int", in: 42},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ModelKeyType(tc.in)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)

			_, err = IsPivotModel(tc.in)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)

			_, err = TableName(tc.in)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)

			_, err = ColumnName(tc.in, "id")
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestResolve_KeepsLiveModel(t *testing.T) {
	t.Parallel()

	u := &User{}
	u.Set("name", "Ann")

	got, err := Resolve(u)
	require.NoError(t, err)
	assert.Same(t, u, got)
}

func TestRegister_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Register("", func() Model { return &User{} }) })
	assert.Panics(t, func() { Register("modelstate.test.nil", nil) })
	assert.Panics(t, func() { Register(registeredUser, func() Model { return &User{} }) })
}

func TestNewUniqueID(t *testing.T) {
	t.Parallel()

	id, err := NewUniqueID(KeyUUID)
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	id, err = NewUniqueID(KeyULID)
	require.NoError(t, err)
	_, err = ulid.ParseStrict(id)
	assert.NoError(t, err)

	_, err = NewUniqueID(KeyInt)
	assert.Error(t, err)
}
