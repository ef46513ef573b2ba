package frontend_domain

import "github.com/itchan-dev/blogfeed/shared/domain"

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error      string
	Success    string
	Session    *domain.Session
	Validation ValidationData
	CSRFToken  string
}

// ValidationData holds the limits templates use for input attributes.
type ValidationData struct {
	PostTitleMaxLen int
	PostBodyMaxLen  int
}
