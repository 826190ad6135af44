package linkage

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNormalizesFields(t *testing.T) {
	in := Record{
		ID:         "1",
		GivenName:  Some("  \"Alice\"  "),
		FamilyName: Some("Van   der\tBerg"),
		Email:      Some("John <j.smith@bücher.de>"),
		Phone:      Some("(650) 253-0000"),
		Note:       Some("\u0000  "),
		BirthYear:  Some(1999),
	}
	out, err := Clean(in, CleanOptions{Region: "us"})
	require.NoError(t, err)

	assert.Equal(t, Some("Alice"), out.GivenName)
	assert.Equal(t, Some("Van der Berg"), out.FamilyName)
	assert.Equal(t, Some("j.smith@xn--bcher-kva.de"), out.Email)
	assert.Equal(t, Some("+16502530000"), out.Phone)
	assert.False(t, out.Note.IsSet())
	assert.Equal(t, Some(1999), out.BirthYear)
	assert.Equal(t, "1", out.ID)
}

func TestCleanInternationalPhoneNeedsNoRegion(t *testing.T) {
	out, err := Clean(Record{Phone: Some("+1 650-253-0000")}, CleanOptions{})
	require.NoError(t, err)
	assert.Equal(t, Some("+16502530000"), out.Phone)
}

func TestCleanKeepsUnparseableContactsAndReports(t *testing.T) {
	in := Record{Email: Some("not an email"), Phone: Some("3787581685")}
	out, err := Clean(in, CleanOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "primary_email")
	assert.Contains(t, err.Error(), "primary_phone")

	assert.Equal(t, Some("not an email"), out.Email)
	assert.Equal(t, Some("3787581685"), out.Phone)
}

func TestCleanEmptyBecomesAbsent(t *testing.T) {
	out, err := Clean(Record{GivenName: Some(""), Email: Some("   ")}, CleanOptions{})
	require.NoError(t, err)
	assert.False(t, out.GivenName.IsSet())
	assert.False(t, out.Email.IsSet())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(alice()))
	assert.NoError(t, Validate(Record{}))

	err := Validate(Record{BirthMonth: Some(13), BirthDay: Some(0)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "birth_date_month=13")
	assert.Contains(t, err.Error(), "birth_date_month_day=0")
}

func TestSanitizeTextTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("a", maxTextLength-1) + "é"
	out, ok := sanitizeText(long)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("a", maxTextLength-1), out)

	exact := strings.Repeat("a", maxTextLength-2) + "é"
	out, ok = sanitizeText(exact)
	require.True(t, ok)
	assert.Equal(t, exact, out)

	r, err := Clean(Record{Note: Some(long)}, CleanOptions{})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(r.Note.OrElse("")))
}
