package request

import (
	"errors"
	"regexp"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	// At least six characters, one of which is not whitespace.
	passwordRegexPattern = `^(?=.*\S).{6,}$`
	phoneRegexPattern    = `^\+?[0-9][0-9 ()-]{5,19}$`

	// bcrypt only hashes the first 72 bytes and refuses longer input.
	maxPasswordBytes = 72
)

var (
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
	phoneExp    = regexp.MustCompile(phoneRegexPattern)

	errInvalidPassword         = errors.New("Password must be at least 6 characters and not only spaces.")
	errConfirmPasswordMismatch = errors.New("Passwords must match.")
	errPasswordTooLong         = errors.New("Password must be at most 72 bytes.")
)

type RegisterForm struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	ContactNumber   string `form:"contact_number" json:"contact_number"`
	StreetAddress   string `form:"street_address" json:"street_address"`
}

func (req *RegisterForm) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FirstName,
			validation.Required.Error("First name is required."),
			validation.Length(2, 150).Error("First name must be between 2 and 150 characters."),
		),
		validation.Field(&req.LastName,
			validation.Required.Error("Last name is required."),
			validation.Length(2, 150).Error("Last name must be between 2 and 150 characters."),
		),
		validation.Field(&req.Email,
			validation.Required.Error("Email is required."),
			is.Email.Error("Enter a valid email address."),
			validation.Length(0, 150).Error("Email must be at most 150 characters."),
		),
		validation.Field(&req.Password,
			validation.Required.Error("Password is required."),
			validation.By(validPassword),
			validation.By(passwordFitsBcrypt),
		),
		validation.Field(&req.ConfirmPassword,
			validation.Required.Error("Please confirm your password."),
			validation.By(equalTo(req.Password, errConfirmPasswordMismatch)),
		),
		validation.Field(&req.ContactNumber,
			validation.Length(0, 20).Error("Contact number must be at most 20 characters."),
			validation.Match(phoneExp).Error("Enter a valid phone number."),
		),
		validation.Field(&req.StreetAddress,
			validation.Length(0, 200).Error("Address must be at most 200 characters."),
		),
	)
}

type LoginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

func (req *LoginForm) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email,
			validation.Required.Error("Email is required."),
			is.Email.Error("Enter a valid email address."),
			validation.Length(0, 150).Error("Email must be at most 150 characters."),
		),
		validation.Field(&req.Password,
			validation.Required.Error("Password is required."),
			validation.Length(6, 0).Error("Password must be at least 6 characters."),
		),
	)
}

func validPassword(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	ok, err := passwordExp.MatchString(s)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
}

func passwordFitsBcrypt(value interface{}) error {
	s, _ := value.(string)
	if len(s) > maxPasswordBytes {
		return errPasswordTooLong
	}

	return nil
}

func equalTo(other string, mismatch error) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" || s == other {
			return nil
		}

		return mismatch
	}
}
