package transport

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(strings.NewReader(`{"jsonrpc":"2.0","method":"update_item","params":{"id":"i1"},"id":7}`))
	require.NoError(t, err)
	assert.Equal(t, "update_item", req.Method)
	assert.JSONEq(t, `{"id":"i1"}`, string(req.Params))
	assert.EqualValues(t, 7, req.ID)
}

func TestParseRequest_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "not json", body: `{"jsonrpc":`, want: ErrMalformed},
		{name: "missing method", body: `{"jsonrpc":"2.0","id":1}`, want: ErrNotJSONRPC},
		{name: "wrong version", body: `{"jsonrpc":"1.0","method":"fetch_list"}`, want: ErrNotJSONRPC},
		{name: "oversized", body: `{"jsonrpc":"2.0","method":"create_item","params":{"name":"` + strings.Repeat("x", MaxRequestBytes) + `"}}`, want: ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteParseError(t *testing.T) {
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) Response {
		t.Helper()
		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		return resp
	}

	rec := httptest.NewRecorder()
	_, err := ParseRequest(strings.NewReader(`nope`))
	writeParseError(rec, err)
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, ErrParseCode, decode(t, rec).Error.Code)

	rec = httptest.NewRecorder()
	_, err = ParseRequest(strings.NewReader(`{"jsonrpc":"2.0"}`))
	writeParseError(rec, err)
	assert.Equal(t, ErrInvalidReq, decode(t, rec).Error.Code)
}

func TestWriteErrorStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorStatus(rec, 404, "x", ErrApplication, "list not found", map[string]string{"code": "LIST_NOT_FOUND"})

	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"x","error":{"code":-32000,"message":"list not found","data":{"code":"LIST_NOT_FOUND"}}}`, rec.Body.String())
}
