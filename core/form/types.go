package form

// Type is the per-form-type configuration: everything that distinguishes one
// of the ~20 submission categories from another. The pipeline itself is
// generic; the form types are data.
type Type struct {
	// Slug is the URL path segment, eg. "exit-forms" -> /api/exit-forms.
	Slug string

	// Table is the storage table holding this type's submissions.
	Table string

	// Label names the type in log and email copy, eg. "I-20 request".
	Label string

	// Program is the default program column value; callers may override it.
	Program string

	// UploadDir is the subdirectory of the upload root for this type's
	// attachments; empty for types that accept no files.
	UploadDir string

	// FileFields lists the multipart fields treated as file uploads. Each
	// yields a "<field>_path" form_data entry, nil when nothing was uploaded.
	FileFields []string

	// BoolFields lists multipart fields normalized from free-form text
	// ("true"/"yes"/"1"/"on") to booleans before storage.
	BoolFields []string

	// ExtraColumns lists the promoted text columns of this type's table
	// (subset of: other_reason, completion_type, comments, remarks).
	ExtraColumns []string

	// LegacyPathFields lists form_data keys of older submissions that hold
	// attachment paths without the "_path" suffix; delete walks them too.
	LegacyPathFields []string
}

var agreementBools = []string{
	"has_us_address",
	"enrolled_full_time",
	"employed_on_campus",
	"previously_authorized",
	"understand_pre_completion",
	"understand_post_completion",
	"understand_medical_insurance",
	"understand_employer_specific",
	"understand_consult_advisor",
	"certify_information",
}

// Types is the registry of every form type served by the API.
var Types = []Type{
	{
		Slug:         "i20-requests",
		Table:        "i20_requests",
		Label:        "I-20 request",
		Program:      "I-20 Request",
		ExtraColumns: []string{"other_reason"},
	},
	{
		Slug:             "academic-training",
		Table:            "academic_training_requests",
		Label:            "Academic Training request",
		Program:          "Academic Training",
		UploadDir:        "academic_training",
		FileFields:       []string{"offer_letter", "training_authorization"},
		BoolFields:       agreementBools,
		ExtraColumns:     []string{"completion_type", "comments"},
		LegacyPathFields: []string{"offer_letter", "training_authorization"},
	},
	{
		Slug:    "administrative-record",
		Table:   "administrative_record_requests",
		Label:   "Administrative Record request",
		Program: "Administrative Record Change",
	},
	{
		Slug:    "conversation-partner",
		Table:   "conversation_partner_requests",
		Label:   "Conversation Partner request",
		Program: "Conversation Partner",
	},
	{
		Slug:       "opt-requests",
		Table:      "opt_requests",
		Label:      "OPT request",
		Program:    "OPT Request",
		UploadDir:  "opt_requests",
		FileFields: []string{"photo2x2", "passport", "i94"},
		BoolFields: []string{"certify_information"},
	},
	{
		Slug:    "document-requests",
		Table:   "document_requests",
		Label:   "Document request",
		Program: "Document Request",
	},
	{
		Slug:    "english-language-volunteer",
		Table:   "english_language_volunteer_requests",
		Label:   "English Language Volunteer request",
		Program: "English Language Program Volunteer",
	},
	{
		Slug:    "off-campus-housing",
		Table:   "off_campus_housing_requests",
		Label:   "Off Campus Housing request",
		Program: "Off Campus Housing Application",
	},
	{
		Slug:       "florida-statute-101035",
		Table:      "florida_statute_101035_requests",
		Label:      "Florida Statute 1010.35 request",
		Program:    "Florida Statute 1010.35",
		UploadDir:  "florida_statute_101035",
		FileFields: []string{"supporting_document"},
		BoolFields: []string{"certify_information"},
	},
	{
		Slug:       "leave-requests",
		Table:      "leave_requests",
		Label:      "Leave request",
		Program:    "Leave Request",
		UploadDir:  "leave_requests",
		FileFields: []string{"supporting_document"},
		BoolFields: []string{"certify_information"},
	},
	{
		Slug:    "opt-stem-reports",
		Table:   "opt_stem_extension_reports",
		Label:   "OPT STEM Extension report",
		Program: "OPT STEM Extension Reporting",
	},
	{
		Slug:       "opt-stem-applications",
		Table:      "opt_stem_extension_applications",
		Label:      "OPT STEM Extension application",
		Program:    "OPT STEM Extension Application",
		UploadDir:  "opt_stem_applications",
		FileFields: []string{"i983", "diploma"},
		BoolFields: []string{"certify_information"},
	},
	{
		Slug:       "exit-forms",
		Table:      "exit_forms",
		Label:      "Exit Form",
		Program:    "Exit Form",
		UploadDir:  "exit_forms",
		FileFields: []string{"supporting_document"},
		BoolFields: []string{"certify_information"},
	},
	{
		Slug:    "pathway-programs-intent-to-progress",
		Table:   "pathway_programs_intent_to_progress",
		Label:   "Pathway Programs Intent to Progress form",
		Program: "Pathway Programs Intent to Progress",
	},
	{
		Slug:    "pathway-programs-next-steps",
		Table:   "pathway_programs_next_steps",
		Label:   "Pathway Programs Next Steps form",
		Program: "Pathway Programs Next Steps",
	},
	{
		Slug:    "reduced-course-load",
		Table:   "reduced_course_load_requests",
		Label:   "Reduced Course Load request",
		Program: "Reduced Course Load",
	},
	{
		Slug:    "global-transfer-out",
		Table:   "global_transfer_out_requests",
		Label:   "Global Transfer Out request",
		Program: "Global Transfer Out",
	},
	{
		Slug:    "records-release",
		Table:   "ucf_global_records_release_forms",
		Label:   "Records Release form",
		Program: "UCF Global Records Release",
	},
	{
		Slug:         "virtual-checkin",
		Table:        "virtual_checkin_requests",
		Label:        "Virtual Check In request",
		Program:      "Virtual Check In",
		UploadDir:    "virtual_checkin",
		FileFields:   []string{"photo", "immigration_document"},
		BoolFields:   []string{"certify_information"},
		ExtraColumns: []string{"remarks"},
	},
}

// TypeBySlug looks a form type up by its URL slug.
func TypeBySlug(slug string) (Type, bool) {
	for _, t := range Types {
		if t.Slug == slug {
			return t, true
		}
	}
	return Type{}, false
}
