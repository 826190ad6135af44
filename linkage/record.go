package linkage

import "fmt"

// Record is a person-like entity with optional name, birth date and contact fields.
// Birth date parts are compared as opaque integers; range checks belong to Validate.
type Record struct {
	ID         string      `json:"id" msgpack:"id"`
	GivenName  Opt[string] `json:"given_name" msgpack:"given_name"`
	FamilyName Opt[string] `json:"family_name" msgpack:"family_name"`
	BirthYear  Opt[int]    `json:"birth_date_year" msgpack:"birth_date_year"`
	BirthMonth Opt[int]    `json:"birth_date_month" msgpack:"birth_date_month"`
	BirthDay   Opt[int]    `json:"birth_date_month_day" msgpack:"birth_date_month_day"`
	Email      Opt[string] `json:"primary_email" msgpack:"primary_email"`
	Phone      Opt[string] `json:"primary_phone" msgpack:"primary_phone"`
	Note       Opt[string] `json:"note" msgpack:"note"`
}

// HasAny reports whether at least one comparable field is present.
func (r Record) HasAny() bool {
	for _, f := range Fields() {
		if f.present(r) {
			return true
		}
	}
	return false
}

func (r Record) String() string {
	return fmt.Sprintf(
		"given name: %v, family name: %v, birth date year: %v, birth date month: %v, birth date month day: %v, primary email: %v, primary phone: %v, note: %v",
		r.GivenName, r.FamilyName, r.BirthYear, r.BirthMonth, r.BirthDay, r.Email, r.Phone, r.Note,
	)
}
