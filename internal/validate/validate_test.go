package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupBody struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(signupBody{Username: "user1", Email: "user1@mail.com", Password: "P4ssword!"})
	assert.Nil(t, errs)
}

func TestStructAggregatesAllFields(t *testing.T) {
	errs := Struct(signupBody{})
	assert.Equal(t, map[string]string{
		"username": "Name is required!",
		"email":    "Email is required",
		"password": "Password is required",
	}, errs)
}

func TestStructFieldMessages(t *testing.T) {
	tests := []struct {
		name string
		in   signupBody
		want map[string]string
	}{
		{
			name: "short username",
			in:   signupBody{Username: "ab", Email: "a@mail.com", Password: "P4ssword!"},
			want: map[string]string{"username": "Name is too short!"},
		},
		{
			name: "long username",
			in:   signupBody{Username: "this-name-is-way-too-long", Email: "a@mail.com", Password: "P4ssword!"},
			want: map[string]string{"username": "Name is too long!"},
		},
		{
			name: "bad email",
			in:   signupBody{Username: "user1", Email: "not-an-email", Password: "P4ssword!"},
			want: map[string]string{"email": "Invalid email!"},
		},
		{
			name: "short password",
			in:   signupBody{Username: "user1", Email: "a@mail.com", Password: "P4ss!"},
			want: map[string]string{"password": "Password is too short!"},
		},
		{
			name: "weak password",
			in:   signupBody{Username: "user1", Email: "a@mail.com", Password: "passwordonly"},
			want: map[string]string{"password": "Password is weak!"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Struct(tc.in))
		})
	}
}

func TestStrongPasswordRule(t *testing.T) {
	type body struct {
		Password string `json:"password" validate:"password"`
	}
	assert.Nil(t, Struct(body{Password: "abc123!@"}))
	assert.NotNil(t, Struct(body{Password: "abcdefgh"}), "missing digit and special")
	assert.NotNil(t, Struct(body{Password: "12345678"}), "missing letter and special")
	assert.NotNil(t, Struct(body{Password: "abc 123!"}), "space is outside the allowed classes")
}

func TestObjectIDRule(t *testing.T) {
	type body struct {
		UserID string `json:"userId" validate:"required,objectid"`
	}
	assert.Nil(t, Struct(body{UserID: "64f1c0ffee0000000000aaaa"}))
	assert.Equal(t, map[string]string{"userId": "Invalid userId!"}, Struct(body{UserID: "nope"}))
	assert.Equal(t, map[string]string{"userId": "Invalid userId!"}, Struct(body{}))
}
