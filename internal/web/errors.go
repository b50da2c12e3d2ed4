package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request id; the client gets the
// mapped user message from registers.MapError. API routes answer in JSON,
// the HTML page in plain text.

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/regdef/internal/catalog"
	"github.com/JonMunkholm/regdef/internal/logging"
	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/JonMunkholm/regdef/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"` // Data row of a compile error
}

var (
	// errInvalidParameter marks a malformed query or path parameter.
	errInvalidParameter = errors.New("invalid query parameter")

	errNoStore = errors.New("catalog store not configured")
)

// userMessage maps err for the client. Request errors are handled here,
// everything else by registers.MapError.
func userMessage(err error) registers.UserMessage {
	switch {
	case errors.Is(err, errInvalidParameter):
		return registers.UserMessage{
			Message: "Invalid query parameter",
			Action:  "Check the groups, delimiter and apply parameters and the catalog id",
			Code:    "REQ001",
		}
	case errors.Is(err, errNoStore):
		return registers.UserMessage{
			Message: "No catalog database configured",
			Action:  "Set DATABASE_URL and restart the server",
			Code:    "DB001",
		}
	case errors.Is(err, store.ErrCatalogNotFound):
		return registers.UserMessage{
			Message: "Catalog not found",
			Action:  "List the stored catalogs with /api/catalogs",
			Code:    "CAT404",
		}
	}
	return registers.MapError(err)
}

// notFound is the user message for a missing register.
func notFound(addr int) registers.UserMessage {
	return registers.UserMessage{
		Message: fmt.Sprintf("No register at address %s", catalog.FormatAddress(addr)),
		Action:  "Check the address against /api/registers",
		Code:    "REG404",
	}
}

// respondError logs err and writes the mapped user message with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := userMessage(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var rowErr *registers.RowParseError
	if errors.As(err, &rowErr) {
		resp.Line = rowErr.Line
	}
	// Internal details stay in the log
	if statusCode >= http.StatusInternalServerError {
		resp.Error = userMsg.Message
	}

	if wantsJSON(r) {
		writeJSON(w, statusCode, resp)
		return
	}
	respondErrorHTML(w, userMsg, statusCode)
}

// respondMessage writes a user message that has no underlying error.
func respondMessage(w http.ResponseWriter, r *http.Request, msg registers.UserMessage, statusCode int) {
	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}
	respondErrorHTML(w, msg, statusCode)
}

// respondErrorHTML writes a plain text error response.
func respondErrorHTML(w http.ResponseWriter, msg registers.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
