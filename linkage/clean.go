package linkage

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	phonenumbers "github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	ErrInvalidValue = errors.New("invalid value")
	ErrOutOfRange   = errors.New("value out of range")
)

// CleanOptions configures Clean.
type CleanOptions struct {
	// Region is the ISO 3166 region assumed for phone numbers without a country code.
	Region string
}

var (
	emailLocalRe  = regexp.MustCompile(`^[^<>()[\]\\,;:\?\s@\"]{1,64}$`)
	domainLabelRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
)

// Clean normalizes a record at the construction boundary. Text that cleans to
// nothing becomes absent. Emails and phones that cannot be normalized keep their
// sanitized text and are reported in the returned error; the record is still usable.
func Clean(r Record, opts CleanOptions) (Record, error) {
	var errs []error
	out := r
	out.GivenName = cleanOpt(r.GivenName, cleanName)
	out.FamilyName = cleanOpt(r.FamilyName, cleanName)
	out.Note = cleanOpt(r.Note, sanitizeText)

	if v, ok := r.Email.Get(); ok {
		out.Email = None[string]()
		if s, ok := sanitizeText(v); ok {
			email, err := cleanEmail(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %q: %w", FieldEmail, s, err))
				email = s
			}
			out.Email = Some(email)
		}
	}
	if v, ok := r.Phone.Get(); ok {
		out.Phone = None[string]()
		if s, ok := sanitizeText(v); ok {
			phone, err := cleanPhone(s, opts.Region)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %q: %w", FieldPhone, s, err))
				phone = s
			}
			out.Phone = Some(phone)
		}
	}
	return out, errors.Join(errs...)
}

// Validate checks birth date parts. The engine never calls it.
func Validate(r Record) error {
	var errs []error
	if m, ok := r.BirthMonth.Get(); ok && (m < 1 || m > 12) {
		errs = append(errs, fmt.Errorf("%s=%d: %w", FieldBirthMonth, m, ErrOutOfRange))
	}
	if d, ok := r.BirthDay.Get(); ok && (d < 1 || d > 31) {
		errs = append(errs, fmt.Errorf("%s=%d: %w", FieldBirthDay, d, ErrOutOfRange))
	}
	return errors.Join(errs...)
}

func cleanOpt(o Opt[string], fn func(string) (string, bool)) Opt[string] {
	v, ok := o.Get()
	if !ok {
		return o
	}
	if s, ok := fn(v); ok {
		return Some(s)
	}
	return None[string]()
}

func cleanName(text string) (string, bool) {
	text = strings.Trim(text, "\"' “”‘’")
	return sanitizeText(text)
}

func cleanEmail(s string) (string, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "mailto:"))
	if _, err := mail.ParseAddress(s); err == nil {
		if i := strings.LastIndex(s, "<"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(s, ">")
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", ErrInvalidValue
	}
	local, domain := s[:at], s[at+1:]
	if !emailLocalRe.MatchString(local) {
		return "", ErrInvalidValue
	}
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	puny, err := idna.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	parts := strings.Split(puny, ".")
	if len(parts) < 2 {
		return "", ErrInvalidValue
	}
	for _, p := range parts {
		if !domainLabelRe.MatchString(p) {
			return "", ErrInvalidValue
		}
	}
	return local + "@" + strings.ToLower(puny), nil
}

// cleanPhone formats a number as E.164.
func cleanPhone(s, region string) (string, error) {
	n, err := phonenumbers.Parse(s, strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if !phonenumbers.IsValidNumber(n) {
		return "", ErrInvalidValue
	}
	return phonenumbers.Format(n, phonenumbers.E164), nil
}
