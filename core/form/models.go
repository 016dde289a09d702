package form

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ucfglobal/studentforms/core"
)

const (
	// StatusPending is the status every submission starts in. Transitions are
	// driven by a separate admin surface and are not constrained here.
	StatusPending = "pending"

	// UnknownStudentName is stored when neither name part was submitted.
	UnknownStudentName = "Unknown"
)

// Data is the catch-all payload holding every submitted field that is not
// promoted to a dedicated column, including "<field>_path" attachment refs.
// Values are JSON scalars only, never nested unserializable types.
type Data map[string]interface{}

var _ driver.Valuer = (Data)(nil)

func (d Data) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *Data) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return errors.Errorf("form: cannot scan %T into Data", src)
}

// Submission is one student-submitted form instance. Each Type persists its
// submissions in its own table; the columns are identical save for the 0-2
// promoted text columns declared in Type.ExtraColumns.
type Submission struct {
	ID             int         `json:"id" db:"id"`
	StudentName    string      `json:"student_name" db:"student_name"`
	StudentID      string      `json:"student_id" db:"student_id"`
	Program        string      `json:"program" db:"program"`
	SubmissionDate time.Time   `json:"submission_date" db:"submission_date"` // UTC
	Status         string      `json:"status" db:"status"`
	FormData       Data        `json:"form_data" db:"form_data"`
	OtherReason    null.String `json:"other_reason,omitempty" db:"other_reason"`
	CompletionType null.String `json:"completion_type,omitempty" db:"completion_type"`
	Comments       null.String `json:"comments,omitempty" db:"comments"`
	Remarks        null.String `json:"remarks,omitempty" db:"remarks"`
}

// ExtraColumn maps a promoted column name to its field, for the generic
// repository to build INSERT args and scan destinations. Returns nil for
// columns this model does not promote.
func (s *Submission) ExtraColumn(col string) *null.String {
	switch col {
	case "other_reason":
		return &s.OtherReason
	case "completion_type":
		return &s.CompletionType
	case "comments":
		return &s.Comments
	case "remarks":
		return &s.Remarks
	}
	return nil
}

// AttachmentPaths collects every file path referenced by this submission:
// any form_data key ending in "_path", plus the legacy singular fields some
// older form types used before the "_path" convention.
func (s *Submission) AttachmentPaths(t Type) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(key string) {
		if v, ok := s.FormData[key]; ok {
			if p, ok := v.(string); ok && p != "" && !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	for key := range s.FormData {
		if strings.HasSuffix(key, "_path") {
			add(key)
		}
	}
	for _, key := range t.LegacyPathFields {
		add(key)
	}
	return paths
}

// Upload is one file received with a multipart submission.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// NewSubmission contains information needed to create a new Submission.
type NewSubmission struct {
	StudentID   string `json:"ucf_id" validate:"required"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	StudentName string `json:"student_name"` // optional caller override; derived when absent
	Email       string `json:"email" validate:"omitempty,email"`
	Program     string `json:"program"`

	Extra        map[string]interface{} `json:"-"`
	ExtraColumns map[string]null.String `json:"-"`
	Uploads      []Upload               `json:"-"`
}

func (ns *NewSubmission) Validate() error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.GivenName = core.CleanString(ns.GivenName)
	ns.FamilyName = core.CleanString(ns.FamilyName)
	ns.StudentName = core.CleanString(ns.StudentName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Program = core.CleanString(ns.Program)
	return core.Validate.Struct(ns)
}

// NewSubmissionFromPayload plucks the common fields and the promoted columns
// of `t` out of a decoded payload; everything else rides along in Extra and
// ends up verbatim inside form_data.
func NewSubmissionFromPayload(t Type, payload map[string]interface{}) NewSubmission {
	ns := NewSubmission{
		Extra:        make(map[string]interface{}, len(payload)),
		ExtraColumns: make(map[string]null.String, len(t.ExtraColumns)),
	}
	for key, val := range payload {
		switch key {
		case "ucf_id", "student_id":
			if ns.StudentID == "" {
				ns.StudentID = stringValue(val)
			}
		case "given_name":
			ns.GivenName = stringValue(val)
		case "family_name":
			ns.FamilyName = stringValue(val)
		case "student_name":
			ns.StudentName = stringValue(val)
		case "email":
			ns.Email = stringValue(val)
		case "program":
			ns.Program = stringValue(val)
		default:
			ns.Extra[key] = val
		}
	}
	for _, col := range t.ExtraColumns {
		if val, ok := ns.Extra[col]; ok {
			delete(ns.Extra, col)
			if val != nil {
				ns.ExtraColumns[col] = null.StringFrom(stringValue(val))
			}
		}
	}
	return ns
}

func stringValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64: // encoding/json decodes all numbers as float64
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	b, err := json.Marshal(val)
	if err != nil {
		return ""
	}
	return string(b)
}
