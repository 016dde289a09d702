package form

import (
	"strings"

	"github.com/ucfglobal/studentforms/core"
)

// truthy is the canonical set of textual values normalized to true. Matching
// is case-insensitive; any other non-empty value normalizes to false.
var truthy = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
	"on":   true,
}

// StudentName derives the display name from the given/family name parts:
// both -> "Given Family", one -> that part, neither -> "Unknown".
func StudentName(given, family string) string {
	given = core.CleanString(given)
	family = core.CleanString(family)
	switch {
	case given != "" && family != "":
		return given + " " + family
	case given != "":
		return given
	case family != "":
		return family
	}
	return UnknownStudentName
}

// ParseBool converts a textual form value to a tri-state boolean:
// nil stays nil (absent, not false).
func ParseBool(raw *string) *bool {
	if raw == nil {
		return nil
	}
	b := truthy[strings.ToLower(strings.TrimSpace(*raw))]
	return &b
}

// ParseBools applies ParseBool to every entry; handy for the checkbox-heavy
// multipart forms.
func ParseBools(fields map[string]*string) map[string]*bool {
	out := make(map[string]*bool, len(fields))
	for key, val := range fields {
		out[key] = ParseBool(val)
	}
	return out
}

// BuildData assembles the form_data payload: the common identity fields,
// email when one was submitted, then every extra field verbatim.
func BuildData(in NewSubmission) Data {
	data := Data{
		"ucf_id":      in.StudentID,
		"given_name":  in.GivenName,
		"family_name": in.FamilyName,
	}
	if in.Email != "" {
		data["email"] = in.Email
	}
	for key, val := range in.Extra {
		data[key] = val
	}
	return data
}
