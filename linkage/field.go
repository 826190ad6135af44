package linkage

import (
	"errors"
	"fmt"
	"strings"
)

// Field identifies one comparable record field. The note is not a Field.
type Field int

const (
	FieldGivenName Field = iota
	FieldFamilyName
	FieldBirthYear
	FieldBirthMonth
	FieldBirthDay
	FieldEmail
	FieldPhone

	fieldCount
)

// FieldKind selects the comparator used for a field.
type FieldKind int

const (
	KindText    FieldKind = iota // blended string similarity
	KindNumeric                  // exact equality
)

var ErrUnknownField = errors.New("unknown field")

var fieldNames = [fieldCount]string{
	FieldGivenName:  "given_name",
	FieldFamilyName: "family_name",
	FieldBirthYear:  "birth_date_year",
	FieldBirthMonth: "birth_date_month",
	FieldBirthDay:   "birth_date_month_day",
	FieldEmail:      "primary_email",
	FieldPhone:      "primary_phone",
}

var fieldAliases = map[string]Field{
	"year":  FieldBirthYear,
	"month": FieldBirthMonth,
	"day":   FieldBirthDay,
	"email": FieldEmail,
	"phone": FieldPhone,
}

// Fields returns the comparable fields in scoring order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseField resolves a canonical field name or a short alias.
func ParseField(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for f, fn := range fieldNames {
		if fn == n {
			return Field(f), nil
		}
	}
	if f, ok := fieldAliases[n]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

func (f Field) Kind() FieldKind {
	switch f {
	case FieldBirthYear, FieldBirthMonth, FieldBirthDay:
		return KindNumeric
	default:
		return KindText
	}
}

func (f Field) text(r Record) (string, bool) {
	switch f {
	case FieldGivenName:
		return r.GivenName.Get()
	case FieldFamilyName:
		return r.FamilyName.Get()
	case FieldEmail:
		return r.Email.Get()
	case FieldPhone:
		return r.Phone.Get()
	}
	return "", false
}

func (f Field) number(r Record) (int, bool) {
	switch f {
	case FieldBirthYear:
		return r.BirthYear.Get()
	case FieldBirthMonth:
		return r.BirthMonth.Get()
	case FieldBirthDay:
		return r.BirthDay.Get()
	}
	return 0, false
}

func (f Field) present(r Record) bool {
	if f.Kind() == KindNumeric {
		_, ok := f.number(r)
		return ok
	}
	_, ok := f.text(r)
	return ok
}
