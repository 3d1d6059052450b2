// Package httputil holds the JSON plumbing shared by the HTTP API handlers.
//
// # Responses
//
// [WriteJSON] encodes a value with the right content type; [WriteError]
// turns any error into a JSON error body with a status derived from its
// [errors.Code]:
//
//	if err != nil {
//	    httputil.WriteError(w, err)
//	    return
//	}
//	httputil.WriteJSON(w, http.StatusOK, resp)
//
// Internal errors are reported as a generic message; only coded errors
// carry their message to the client.
//
// # Requests
//
// [DecodeJSON] reads a size-limited request body and rejects unknown
// fields, so typos in option names fail loudly instead of being ignored.
//
// [errors.Code]: github.com/matzehuels/spacecol/pkg/errors.Code
package httputil
