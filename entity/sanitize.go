package entity

import "github.com/microcosm-cc/bluemonday" // UGC sanitizer for exported HTML bodies

var htmlSanitizer = bluemonday.UGCPolicy()

// SanitizeHTML strips scripts and other unsafe markup from an HTML body
// before it is written into an EML/PST export, grounded on
// inbucket/pkg/webui/sanitize's bluemonday.UGCPolicy() usage.
func SanitizeHTML(htmlBody string) string {
	return htmlSanitizer.Sanitize(htmlBody)
}
