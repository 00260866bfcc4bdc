package forms

// AccountType is the closed set of account products a visitor can open.
type AccountType string

const (
	// AccountPersonal is a consumer checking/savings account.
	AccountPersonal AccountType = "Personal"
	// AccountBusiness is a business banking account.
	AccountBusiness AccountType = "Business"
	// AccountInvestment is a brokerage/investment account.
	AccountInvestment AccountType = "Investment"
)

// Valid reports whether t is one of the declared account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountPersonal, AccountBusiness, AccountInvestment:
		return true
	}
	return false
}

// Draft is the mutable record held for the lifetime of the enrollment
// wizard. It is created empty, mutated field by field as the visitor
// types, read exactly once at final submission, and discarded afterwards.
type Draft struct {
	// Personal information (step 0).
	FirstName   string
	MiddleName  string
	LastName    string
	DateOfBirth string
	Username    string

	// Contact information (step 1).
	Email      string
	Phone      string
	Country    string
	Address    string
	City       string
	State      string
	PostalCode string

	// Account setup (step 2).
	AccountType       AccountType
	Password          string
	SecurityQuestion1 string
	SecurityQuestion2 string
	PIN               string
	ConfirmPIN        string
	TermsAccepted     bool

	// Identity verification references (step 3).
	EmailCode   string
	PhoneCode   string
	IDReference string
}

// Reset clears every field, returning the draft to its just-mounted state.
func (d *Draft) Reset() {
	*d = Draft{}
}
