package oauth

import "regexp"

// sensitiveFieldPattern matches JSON string members and form fields that may
// carry credentials in token endpoint traffic.
var sensitiveFieldPattern = regexp.MustCompile(
	`("(?:access_token|refresh_token|id_token|client_secret|client_assertion)"\s*:\s*)"[^"]*"`)

var sensitiveFormPattern = regexp.MustCompile(
	`((?:^|&)(?:access_token|refresh_token|id_token|client_secret|client_assertion)=)[^&]*`)

// RedactTokenFields replaces the values of token-bearing fields in a token
// endpoint body with [REDACTED]. Bodies in other formats pass through.
func RedactTokenFields(body string) string {
	body = sensitiveFieldPattern.ReplaceAllString(body, `${1}"[REDACTED]"`)
	return sensitiveFormPattern.ReplaceAllString(body, `${1}[REDACTED]`)
}
