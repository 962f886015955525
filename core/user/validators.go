package user

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password is too similar to the email"

	pwdTexts = map[string]string{
		pwdMinLenTag:    pwdMinLenText,
		pwdNoSpaceTag:   pwdNoSpaceText,
		pwdNotAllNumTag: pwdNotAllNumText,
		pwdAttrSimTag:   pwdAttrSimText,
	}
)

// InitValidators registers the password policy on Register and NewUser.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, Register{}, NewUser{})
	for tag, text := range pwdTexts {
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}
}

// userStructValidation does struct level validation on Register and NewUser structs.
func userStructValidation(sl validator.StructLevel) {
	var pwd, email string
	switch usr := sl.Current().Interface().(type) {
	case Register:
		pwd, email = usr.Password, usr.Email
	case NewUser:
		pwd, email = usr.Password, usr.Email
	default:
		return
	}
	if pwd == "" {
		return // reported by `required`
	}
	if tag := checkPassword(pwd, email); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}

// ValidatePassword applies the password policy and returns a ValidationError on `field` when it fails.
func ValidatePassword(field, pwd, email string) error {
	if tag := checkPassword(pwd, email); tag != "" {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: pwdTexts[tag]})
	}
	return nil
}

// checkPassword returns the tag of the first broken rule, or "":
// - minLen: 8
// - no whitespace
// - not all numeric
// - not similar to the email's local part
func checkPassword(pwd, email string) string {
	runes := []rune(pwd)
	if len(runes) < pwdMinLen {
		return pwdMinLenTag
	}

	var digitCount int
	for _, char := range runes {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len(runes) {
		return pwdNotAllNumTag
	}

	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if local != "" {
		ratio := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(local, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}
	return ""
}
