package modelstate

import (
	"reflect"
	"testing"
)

func TestTableName(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   any
		want string
	}{
		{name: "plural", in: &User{}, want: "users"},
		{name: "irregular plural", in: (*Person)(nil), want: "people"},
		{name: "snake case", in: reflect.TypeOf(RoleUser{}), want: "role_users"},
		{name: "acronym", in: &HTTPRequestLog{}, want: "http_request_logs"},
		{name: "table namer", in: (*Account)(nil), want: "billing.accounts"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := TableName(tc.in)
			if err != nil {
				t.Fatalf("TableName(%T) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("TableName(%T) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestColumnName(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name      string
		in        any
		attribute string
		want      string
	}{
		{name: "simple", in: &User{}, attribute: "email", want: "users.email"},
		{name: "schema qualified table", in: (*Account)(nil), attribute: "number", want: "billing.accounts.number"},
		{name: "already qualified", in: &User{}, attribute: "accounts.number", want: "accounts.number"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ColumnName(tc.in, tc.attribute)
			if err != nil {
				t.Fatalf("ColumnName(%T, %q) error = %v", tc.in, tc.attribute, err)
			}
			if got != tc.want {
				t.Fatalf("ColumnName(%T, %q) = %q, want %q", tc.in, tc.attribute, got, tc.want)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want string
	}{
		{in: "User", want: "user"},
		{in: "RoleUser", want: "role_user"},
		{in: "HTTPRequestLog", want: "http_request_log"},
		{in: "userID", want: "user_id"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := toSnakeCase(tc.in); got != tc.want {
				t.Fatalf("toSnakeCase(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
