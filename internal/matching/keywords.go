package matching

import "github.com/jonathan/form-autofill/internal/types"

// KeywordRule maps an identifier substring to a profile attribute.
type KeywordRule struct {
	Pattern   string
	Attribute string
}

// DefaultKeywords is checked in order and the first contained pattern wins, so
// patterns that would collide are listed most specific first (email before
// address, so "email_address" resolves to email; the zip variants before postal).
var DefaultKeywords = []KeywordRule{
	{"firstname", types.AttrFirstName},
	{"first_name", types.AttrFirstName},
	{"first-name", types.AttrFirstName},
	{"givenname", types.AttrFirstName},
	{"given-name", types.AttrFirstName},
	{"fname", types.AttrFirstName},
	{"lastname", types.AttrLastName},
	{"last_name", types.AttrLastName},
	{"last-name", types.AttrLastName},
	{"familyname", types.AttrLastName},
	{"family-name", types.AttrLastName},
	{"surname", types.AttrLastName},
	{"lname", types.AttrLastName},
	{"email", types.AttrEmail},
	{"e-mail", types.AttrEmail},
	{"telephone", types.AttrPhone},
	{"phone", types.AttrPhone},
	{"mobile", types.AttrPhone},
	{"linkedin", types.AttrLinkedin},
	{"github", types.AttrGithub},
	{"location", types.AttrLocation},
	{"address", types.AttrAddress},
	{"street", types.AttrAddress},
	{"city", types.AttrCity},
	{"state", types.AttrState},
	{"zip_code", types.AttrZipCode},
	{"zipcode", types.AttrZipCode},
	{"zip", types.AttrZipCode},
	{"postal", types.AttrZipCode},
	{"postcode", types.AttrZipCode},
	{"country", types.AttrCountry},
	{"coverletter", types.AttrCoverLetter},
	{"cover_letter", types.AttrCoverLetter},
	{"cover-letter", types.AttrCoverLetter},
	{"resume", types.AttrResume},
	{"cv", types.AttrResume},
}
