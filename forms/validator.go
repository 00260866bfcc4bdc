package forms

import (
	"fmt"
	"net/mail"
	"regexp"
)

// Field names a single draft field. The string values double as form
// input names in hosting front ends.
type Field string

const (
	FieldFirstName         Field = "firstName"
	FieldMiddleName        Field = "middleName"
	FieldLastName          Field = "lastName"
	FieldDateOfBirth       Field = "dateOfBirth"
	FieldUsername          Field = "username"
	FieldEmail             Field = "email"
	FieldPhone             Field = "phone"
	FieldCountry           Field = "country"
	FieldAddress           Field = "address"
	FieldCity              Field = "city"
	FieldState             Field = "state"
	FieldPostalCode        Field = "postalCode"
	FieldAccountType       Field = "accountType"
	FieldPassword          Field = "password"
	FieldSecurityQuestion1 Field = "securityQuestion1"
	FieldSecurityQuestion2 Field = "securityQuestion2"
	FieldPIN               Field = "pin"
	FieldConfirmPIN        Field = "confirmPin"
	FieldTermsAccepted     Field = "termsAccepted"
	FieldEmailCode         Field = "emailCode"
	FieldPhoneCode         Field = "phoneCode"
	FieldIDReference       Field = "idReference"
)

// Violations maps a field to a human-readable message describing why it
// failed validation. A nil map means the checked fields are all valid.
type Violations map[Field]string

// Has reports whether f carries a violation.
func (v Violations) Has(f Field) bool {
	_, ok := v[f]
	return ok
}

// Step declares the title and the owned fields of one wizard step.
type Step struct {
	Title  string
	Fields []Field
}

var steps = []Step{
	{
		Title: "Personal Information",
		Fields: []Field{
			FieldFirstName, FieldMiddleName, FieldLastName,
			FieldDateOfBirth, FieldUsername,
		},
	},
	{
		Title: "Contact Information",
		Fields: []Field{
			FieldEmail, FieldPhone, FieldCountry, FieldAddress,
			FieldCity, FieldState, FieldPostalCode,
		},
	},
	{
		Title: "Account Setup",
		Fields: []Field{
			FieldAccountType, FieldPassword,
			FieldSecurityQuestion1, FieldSecurityQuestion2,
			FieldPIN, FieldConfirmPIN, FieldTermsAccepted,
		},
	},
	{
		Title: "Verification",
		Fields: []Field{
			FieldEmailCode, FieldPhoneCode, FieldIDReference,
		},
	},
}

// StepCount returns the number of wizard steps.
func StepCount() int {
	return len(steps)
}

// StepTitle returns the display title of step k, or "" when k is out of
// range.
func StepTitle(k int) string {
	if k < 0 || k >= len(steps) {
		return ""
	}
	return steps[k].Title
}

// StepFields returns the fields owned by step k, or nil when k is out of
// range. The returned slice must not be mutated.
func StepFields(k int) []Field {
	if k < 0 || k >= len(steps) {
		return nil
	}
	return steps[k].Fields
}

var pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// minLengths holds the required-string thresholds by field semantics.
// Fields absent from the map have no length rule.
var minLengths = map[Field]int{
	FieldFirstName:         2,
	FieldLastName:          2,
	FieldDateOfBirth:       1,
	FieldUsername:          4,
	FieldPhone:             8,
	FieldCountry:           2,
	FieldAddress:           5,
	FieldCity:              2,
	FieldState:             2,
	FieldPostalCode:        3,
	FieldPassword:          8,
	FieldSecurityQuestion1: 3,
	FieldSecurityQuestion2: 3,
	FieldEmailCode:         4,
	FieldPhoneCode:         4,
	FieldIDReference:       4,
}

// ValidateStep checks only the fields declared by step k and returns the
// violations found, or nil when all declared fields pass. Out-of-range
// steps validate vacuously.
func ValidateStep(d *Draft, k int) Violations {
	return validateFields(d, StepFields(k))
}

// Validate checks the full draft across every step.
func Validate(d *Draft) Violations {
	var all []Field
	for _, s := range steps {
		all = append(all, s.Fields...)
	}
	return validateFields(d, all)
}

func validateFields(d *Draft, fields []Field) Violations {
	if d == nil {
		return nil
	}

	var out Violations
	add := func(f Field, msg string) {
		if out == nil {
			out = Violations{}
		}
		out[f] = msg
	}

	for _, f := range fields {
		switch f {
		case FieldMiddleName:
			// Optional.
		case FieldEmail:
			if !validEmail(d.Email) {
				add(f, "enter a valid email address")
			}
		case FieldAccountType:
			if !d.AccountType.Valid() {
				add(f, "select a valid account type")
			}
		case FieldPIN:
			if !pinPattern.MatchString(d.PIN) {
				add(f, "transaction PIN must be 4 to 6 digits")
			}
		case FieldConfirmPIN:
			if d.ConfirmPIN != d.PIN {
				add(f, "PIN values do not match")
			}
		case FieldTermsAccepted:
			if !d.TermsAccepted {
				add(f, "you must accept the terms and conditions")
			}
		default:
			min := minLengths[f]
			if min <= 0 {
				continue
			}
			if len(fieldValue(d, f)) < min {
				if min == 1 {
					add(f, "required")
				} else {
					add(f, fmt.Sprintf("must be at least %d characters", min))
				}
			}
		}
	}

	return out
}

// ValidatePIN applies the transaction-PIN rules outside the wizard, for
// the standalone PIN screen. Same messages as the wizard's step rules.
func ValidatePIN(pin, confirm string) Violations {
	var out Violations
	if !pinPattern.MatchString(pin) {
		out = Violations{FieldPIN: "transaction PIN must be 4 to 6 digits"}
	}
	if confirm != pin {
		if out == nil {
			out = Violations{}
		}
		out[FieldConfirmPIN] = "PIN values do not match"
	}
	return out
}

// ValidateEmail applies the email-format rule outside the wizard, for the
// recovery request screen.
func ValidateEmail(email string) Violations {
	if !validEmail(email) {
		return Violations{FieldEmail: "enter a valid email address"}
	}
	return nil
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func fieldValue(d *Draft, f Field) string {
	switch f {
	case FieldFirstName:
		return d.FirstName
	case FieldMiddleName:
		return d.MiddleName
	case FieldLastName:
		return d.LastName
	case FieldDateOfBirth:
		return d.DateOfBirth
	case FieldUsername:
		return d.Username
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldCountry:
		return d.Country
	case FieldAddress:
		return d.Address
	case FieldCity:
		return d.City
	case FieldState:
		return d.State
	case FieldPostalCode:
		return d.PostalCode
	case FieldAccountType:
		return string(d.AccountType)
	case FieldPassword:
		return d.Password
	case FieldSecurityQuestion1:
		return d.SecurityQuestion1
	case FieldSecurityQuestion2:
		return d.SecurityQuestion2
	case FieldPIN:
		return d.PIN
	case FieldConfirmPIN:
		return d.ConfirmPIN
	case FieldEmailCode:
		return d.EmailCode
	case FieldPhoneCode:
		return d.PhoneCode
	case FieldIDReference:
		return d.IDReference
	}
	return ""
}
