package supastore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-paybridge/core"
)

// pgrstCodeNoRows is the PostgREST code for a single-object request that
// matched no rows. Read paths that tolerate absence map it to a nil result.
const pgrstCodeNoRows = "PGRST116"

type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`

	// GoTrue failures use a different envelope.
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e remoteError) text() string {
	for _, candidate := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "unknown remote error"
}

func decodeRemoteError(statusCode int, body []byte) remoteError {
	var decoded remoteError
	if len(body) > 0 {
		_ = json.Unmarshal(body, &decoded)
	}
	if strings.TrimSpace(decoded.text()) == "unknown remote error" && len(body) > 0 {
		decoded.Message = strings.TrimSpace(string(body))
	}
	if decoded.Message == "" && decoded.Msg == "" && decoded.Error == "" && decoded.ErrorDescription == "" {
		decoded.Message = fmt.Sprintf("remote returned status %d", statusCode)
	}
	return decoded
}

func isNoRows(statusCode int, body []byte) bool {
	if statusCode < 400 {
		return false
	}
	return decodeRemoteError(statusCode, body).Code == pgrstCodeNoRows
}

// wrapRemoteFailure carries the remote status and error code through as a
// backend error without reinterpretation.
func wrapRemoteFailure(operation string, statusCode int, body []byte) error {
	remote := decodeRemoteError(statusCode, body)
	source := fmt.Errorf("status %d (%s): %s", statusCode, remote.Code, remote.text())
	return core.WrapBackendError(source, "supastore: "+operation)
}
