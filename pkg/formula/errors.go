package formula

import "fmt"

// ParseError is a formula syntax error with its source offset.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("formula parse error at offset %d: %s", e.Pos.Offset, e.Message)
}
