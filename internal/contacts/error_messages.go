package contacts

// error_messages.go maps errors to user-facing messages with support codes.
//
// Codes by category:
//
//	VAL001-VAL099   request validation (missing field, invalid enum, missing column)
//	NF001-NF099     target does not exist
//	CON001-CON099   unique key conflicts
//	FILE001-FILE099 uploaded file problems
//	IMP001-IMP099   import processing
//	AUTH001         login failure
//	DB001-DB099     persistence failures
//	RATE001         throttling
//	ERR000          anything else; check the logs for the technical error
//
// Patterns are matched case-insensitively against the error text with
// strings.Contains and the first match wins, so specific patterns come
// first. When nothing matches, the default message of the error's Kind is
// used.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is a user-friendly description of an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"missing required column", UserMessage{"Required column is missing from the file", `Add a "Name" column to the first row`, "VAL004"}},
	{"invalid enum", UserMessage{"Contact method type is not allowed", "Use phone, email, social or address", "VAL006"}},
	{"invalid import id", UserMessage{"Import id is malformed", "Use the import_id returned by the import", "VAL007"}},
	{"required field", UserMessage{"A required field is empty", "Fill in every required field", "VAL003"}},

	{"contact not found", UserMessage{"Contact not found", "It may have been deleted; reload the list", "NF001"}},
	{"user not found", UserMessage{"User not found", "Check the user id", "NF002"}},

	{"username already exists", UserMessage{"Username already exists", "Choose a different username", "CON001"}},

	{"file too large", UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE001"}},
	{"unsupported file type", UserMessage{"File type is not supported", "Upload an .xlsx or .csv file", "FILE002"}},
	{"invalid spreadsheet", UserMessage{"File is not a readable spreadsheet", "Re-save the file as .xlsx", "FILE003"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure the file is comma-separated", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Select a spreadsheet to upload", "FILE004"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Upload a file with a header row", "FILE005"}},

	{"too many imports", UserMessage{"Too many imports are running", "Please wait a moment and try again", "IMP001"}},

	{"invalid username or password", UserMessage{"Invalid username or password", "Check your credentials", "AUTH001"}},

	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "DB006"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "DB008"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var kindDefaults = map[Kind]UserMessage{
	KindValidation:   {"Request is invalid", "Check the submitted fields", "VAL000"},
	KindNotFound:     {"Requested record does not exist", "Reload and try again", "NF000"},
	KindConflict:     {"Record already exists", "Use a different value", "CON000"},
	KindFormat:       {"File could not be read", "Upload an .xlsx or .csv file", "FILE000"},
	KindUnauthorized: {"Not authorized", "Log in again", "AUTH000"},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a UserMessage. A nil error maps to the zero
// value.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var e *Error
	isTyped := errors.As(err, &e)
	if isTyped && e.Kind == KindNotFound && e.Op == "rollback import" {
		return UserMessage{"Import not found", "It may already have been rolled back", "NF003"}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if isTyped {
		if msg, ok := kindDefaults[e.Kind]; ok {
			return msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
