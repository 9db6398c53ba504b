package jsonrpc

type ErrorCode int

// JSON-RPC 2.0 Error Codes
const (
	ErrParseError     ErrorCode = -32700 // Invalid JSON was received by the server
	ErrInvalidRequest ErrorCode = -32600 // The JSON sent is not a valid Request object
	ErrMethodNotFound ErrorCode = -32601 // The method does not exist / is not available
	ErrInvalidParams  ErrorCode = -32602 // Invalid method parameter(s)
	ErrInternalError  ErrorCode = -32603 // Internal JSON-RPC error

	// Server error codes (-32000 to -32099)
	ErrServerError ErrorCode = -32000 // Reserved for implementation-defined server-errors
)

// ParseError builds the response for a frame that is not valid JSON.
func ParseError() *Response {
	return NewErrorResponse(nil, ErrParseError, "Parse error", nil)
}

// InvalidRequest builds the response for a structurally invalid request.
func InvalidRequest(id any) *Response {
	return NewErrorResponse(id, ErrInvalidRequest, "Invalid request", nil)
}

// MethodNotFound builds the response for an unknown method.
func MethodNotFound(id any, method string) *Response {
	return NewErrorResponse(id, ErrMethodNotFound, "Method not found", map[string]any{
		"method": method,
	})
}
