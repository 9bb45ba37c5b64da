package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamError represents an invalid path or query parameter
type ParamError struct {
	Code    string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// ParseID parses a positive numeric id taken from the URL
func ParseID(name, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, &ParamError{
			Code:    "INVALID_ID",
			Message: fmt.Sprintf("%s must be a positive integer", name),
		}
	}
	return uint(id), nil
}
