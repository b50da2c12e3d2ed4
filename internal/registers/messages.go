package registers

// messages.go maps compile errors to user-facing messages with support codes.
//
// # Register Errors (REG001-REG099)
//
//	REG001 - Unknown type: the type column names an unsupported base type
//	REG002 - Invalid length: the element count after "type:" is not a positive integer
//	REG003 - Malformed ENUM/FLAGS block: a unit line is not "VALUE: NAME" or repeats a name or value
//	REG004 - Invalid number: address or divisor is not a number
//
// # Header Errors (HDR001-HDR099)
//
//	HDR001 - Missing columns: address, name, type and unit are required
//	HDR002 - Column conflict: two columns map to the same field
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Empty file: no header row was found
//	FILE002 - Invalid CSV: quoting or delimiter problems
//
// # Store Errors (DB001-DB099)
//
//	DB004 - Connection refused
//	DB006 - Timeout
//
// # Default Error (ERR000)
//
// Sentinel errors are matched with errors.Is first; the remaining patterns
// are matched case-insensitively against the error text. The first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	target  error  // Matched with errors.Is when set
	pattern string // Matched against the lower-cased error text otherwise
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Header errors come first: they abort before any row is read.
	{
		target: ErrMissingRequiredColumns,
		msg: UserMessage{
			Message: "Required column is missing from the register file",
			Action:  "Add the address, name, type and unit columns to the header row",
			Code:    "HDR001",
		},
	},
	{
		target: ErrColumnConflict,
		msg: UserMessage{
			Message: "Two columns describe the same field",
			Action:  "Rename or remove the duplicated column in the header row",
			Code:    "HDR002",
		},
	},
	{
		target: ErrEmptyInput,
		msg: UserMessage{
			Message: "The register file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "FILE001",
		},
	},

	// Row errors.
	{
		target: ErrUnknownTypeAlias,
		msg: UserMessage{
			Message: "Unknown register type",
			Action:  "Use one of " + typeNames(),
			Code:    "REG001",
		},
	},
	{
		target: ErrInvalidLength,
		msg: UserMessage{
			Message: "Invalid element count in the type column",
			Action:  "Write the count as a positive integer, e.g. int16:4",
			Code:    "REG002",
		},
	},
	{
		target: ErrMalformedSymbolicUnit,
		msg: UserMessage{
			Message: "Malformed ENUM or FLAGS definition",
			Action:  "Write one \"VALUE: NAME\" line per member, without repeating names or values",
			Code:    "REG003",
		},
	},
	{
		target: ErrInvalidNumber,
		msg: UserMessage{
			Message: "Invalid number in address or divisor",
			Action:  "Use a decimal or 0x/0o/0b prefixed integer; divisors may also be decimals",
			Code:    "REG004",
		},
	},

	// Text patterns for errors raised outside this package.
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file is not valid CSV",
			Action:  "Check quoting and the configured delimiter",
			Code:    "FILE002",
		},
	},
	{
		pattern: "open register file",
		msg: UserMessage{
			Message: "The register file could not be opened",
			Action:  "Check the file path and its permissions",
			Code:    "FILE003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.target != nil {
			if errors.Is(err, ep.target) {
				return ep.msg
			}
			continue
		}
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action", adding the
// row location when the error carries one.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}

	var rowErr *RowParseError
	if errors.As(err, &rowErr) {
		return fmt.Sprintf("%s at line %d of %s (Code: %s). %s",
			msg.Message, rowErr.Line, sourceName(rowErr.Source), msg.Code, msg.Action)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// typeNames lists the canonical type names, e.g. "int16, uint16 or ascii".
func typeNames() string {
	encs := Encodings()
	names := make([]string, len(encs))
	for i, enc := range encs {
		names[i] = enc.Name
	}
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
