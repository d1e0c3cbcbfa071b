package validatex_test

import (
	"testing"

	"github.com/aussiebroadwan/hireflow/pkg/validatex"
	"github.com/stretchr/testify/require"
)

type signup struct {
	FirstName  string `json:"first_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Mobile     string `json:"mobile" validate:"required,mobile"`
	Experience string `json:"experience" validate:"required,experience"`
	Password   string `json:"password" validate:"required,password"`
	Code       string `json:"otp" validate:"omitempty,otp"`
}

func valid() signup {
	return signup{
		FirstName:  "Ada",
		Email:      "ada@example.com",
		Mobile:     "+61412345678",
		Experience: "3",
		Password:   "correct-horse",
	}
}

func TestStructValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, validatex.Default().Struct(valid()))
}

func TestStructKeysAreJSONNames(t *testing.T) {
	t.Parallel()

	in := valid()
	in.FirstName = ""
	in.Email = "not-an-email"

	err := validatex.Default().Struct(in)

	var fe validatex.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe, 2)
	require.Equal(t, "First name is a required field", fe["first_name"])
	require.Contains(t, fe, "email")
}

func TestCustomRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		mut   func(*signup)
		field string
	}{
		{"mobile too short", func(s *signup) { s.Mobile = "12345" }, "mobile"},
		{"mobile letters", func(s *signup) { s.Mobile = "04123abc678" }, "mobile"},
		{"password short", func(s *signup) { s.Password = "1234567" }, "password"},
		{"experience negative", func(s *signup) { s.Experience = "-1" }, "experience"},
		{"experience text", func(s *signup) { s.Experience = "lots" }, "experience"},
		{"otp three digits", func(s *signup) { s.Code = "123" }, "otp"},
		{"otp letters", func(s *signup) { s.Code = "12a4" }, "otp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := valid()
			tc.mut(&in)

			var fe validatex.FieldErrors
			require.ErrorAs(t, validatex.Default().Struct(in), &fe)
			require.Contains(t, fe, tc.field)
			require.Len(t, fe, 1)
		})
	}
}

func TestBoundaryValuesPass(t *testing.T) {
	t.Parallel()

	in := valid()
	in.Mobile = "0412345678" // 10 digits, no plus
	in.Password = "12345678"
	in.Experience = "0"
	in.Code = "0000"
	require.NoError(t, validatex.Default().Struct(in))

	in.Experience = "2.5"
	require.NoError(t, validatex.Default().Struct(in))
}

func TestFieldErrorsMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "validation error", validatex.FieldErrors{}.Error())
	require.JSONEq(t, `{"email":"bad"}`, validatex.FieldErrors{"email": "bad"}.Error())
}
