package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

// ChatErrorPrefix prefixes the detail of every dispatch failure.
const ChatErrorPrefix = "Chat processing error: "

// HandleError converts an error to a status code and error body.
// Request validation errors map to 422 with their message; every other
// error is a dispatch failure and maps to 500.
//
// Example usage:
//
//	if err != nil {
//	    status, errResp := HandleError(err)
//	    WriteErrorResponse(w, status, errResp)
//	    return
//	}
func HandleError(err error) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode(), reqErr.ToErrorResponse()
	}

	return http.StatusInternalServerError, types.NewErrorResponse(ChatErrorPrefix + errorText(err))
}

// StreamErrorEvent builds the event that ends a failed stream.
func StreamErrorEvent(err error) *types.ErrorEvent {
	return &types.ErrorEvent{Error: ChatErrorPrefix + errorText(err)}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return fmt.Sprint(err)
}
