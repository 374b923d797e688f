package http

import (
	"encoding/json"
	"net/http"
)

// CodeEncodingFailed marks a response body that could not be serialized
const CodeEncodingFailed = "ENCODING_FAILED"

// JSON encodes data and writes it with statusCode. The body is encoded before
// the header goes out, so a value that cannot be serialized turns into a 500
// rather than a success status with a truncated body.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.WriteHeader(statusCode)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{
			Error: "failed to encode response",
			Code:  CodeEncodingFailed,
		})
	}

	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}
