package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"instavibe/shared"

	"github.com/davecgh/go-spew/spew"
)

// HandleApiError classifies a >= 400 response. The server's own message is kept verbatim when it sent one.
func HandleApiError(r *http.Response, errBody []byte) *shared.ApiError {
	apiErr := &shared.ApiError{
		Type:   shared.ApiErrorTypeOther,
		Status: r.StatusCode,
		Msg:    serverMessage(r, errBody),
	}

	switch {
	case r.StatusCode >= 500:
		apiErr.Type = shared.ApiErrorTypeServerTransient
	case r.StatusCode == http.StatusBadRequest:
		apiErr.Type = shared.ApiErrorTypeBadRequest
	}

	log.Printf("api error: %v", apiErr)

	return apiErr
}

func serverMessage(r *http.Response, body []byte) string {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			Error   string `json:"error"`
			Msg     string `json:"msg"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			log.Printf("Error unmarshalling JSON error body: %v\n", err)
		} else {
			for _, s := range []string{payload.Error, payload.Msg, payload.Message} {
				if s != "" {
					return s
				}
			}
			return ""
		}
	}

	// html error pages from the hosting proxy are noise
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/html") {
		return ""
	}

	return strings.TrimSpace(string(body))
}

func networkError(err error) *shared.ApiError {
	msg := fmt.Sprintf("error sending request: %v", err)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		msg = fmt.Sprintf("request timed out: %v", err)
	}
	return &shared.ApiError{Type: shared.ApiErrorTypeNetwork, Msg: msg}
}

func dataFormatError(format string, args ...interface{}) *shared.ApiError {
	return &shared.ApiError{Type: shared.ApiErrorTypeDataFormat, Msg: fmt.Sprintf(format, args...)}
}

func debugDump(label string, v interface{}) {
	if os.Getenv("INSTAVIBE_DEBUG") == "" {
		return
	}
	log.Printf("%s:\n%s", label, spew.Sdump(v))
}
