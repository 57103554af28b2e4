package flex

import "net/http"

// ProcessHeaders copies buffered headers onto w. Existing values for the
// same keys are replaced.
func ProcessHeaders(headers http.Header, w http.ResponseWriter) {
	if w == nil {
		return
	}
	dst := w.Header()
	for key, values := range headers {
		dst[key] = append([]string(nil), values...)
	}
}
