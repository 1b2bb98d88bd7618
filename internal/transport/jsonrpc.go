package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// JSON-RPC 2.0 error codes.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
	// ErrApplication carries a domain error; Data holds the rpc.APIError.
	ErrApplication = -32000
)

// MaxRequestBytes caps a request body. Item intents are tiny.
const MaxRequestBytes = 64 << 10

var (
	// ErrMalformed is returned when the body is not valid JSON.
	ErrMalformed = errors.New("malformed request body")
	// ErrNotJSONRPC is returned for valid JSON that is not a 2.0 request.
	ErrNotJSONRPC = errors.New("not a JSON-RPC 2.0 request")
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ParseRequest decodes one request of at most MaxRequestBytes.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(io.LimitReader(body, MaxRequestBytes)).Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, ErrNotJSONRPC
	}
	return req, nil
}

// writeParseError answers a ParseRequest failure with the matching code.
func writeParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrMalformed) {
		WriteError(w, nil, ErrParseCode, "parse error", nil)
		return
	}
	WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
}

// WriteResult writes a success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, http.StatusOK, Response{JSONRPC: "2.0", Result: result, ID: id})
}

// WriteError writes an error response with HTTP status 200.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	WriteErrorStatus(w, http.StatusOK, id, code, message, data)
}

// WriteErrorStatus writes an error response with an explicit HTTP status,
// used for failures found before the method runs (unknown list token).
func WriteErrorStatus(w http.ResponseWriter, status int, id any, code int, message string, data any) {
	writeJSON(w, status, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message, Data: data},
		ID:      id,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
