package transport

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	body := strings.NewReader(`{"jsonrpc":"2.0","method":"get_progress","params":{"session_id":"s1"},"id":7}`)
	req, err := decodeRequest(body)
	require.NoError(t, err)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "get_progress", req.Method)
	require.JSONEq(t, `{"session_id":"s1"}`, string(req.Params))
}

func TestDecodeRequest_MissingMethod(t *testing.T) {
	body := strings.NewReader(`{"jsonrpc":"2.0","id":1}`)
	_, err := decodeRequest(body)
	require.ErrorIs(t, err, errMalformedRequest)
}

func TestDecodeRequest_WrongVersion(t *testing.T) {
	body := strings.NewReader(`{"jsonrpc":"1.0","method":"get_progress","id":1}`)
	_, err := decodeRequest(body)
	require.ErrorIs(t, err, errMalformedRequest)
}

func TestDecodeRequest_MalformedJSON(t *testing.T) {
	_, err := decodeRequest(strings.NewReader(`{`))
	require.Error(t, err)
	require.NotErrorIs(t, err, errMalformedRequest)
}

func TestWriteResult(t *testing.T) {
	rec := httptest.NewRecorder()
	writeResult(rec, 3, map[string]int{"count": 2})

	require.Equal(t, 200, rec.Code)
	require.JSONEq(t, `{"jsonrpc":"2.0","result":{"count":2},"id":3}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, 3, codeInvalidParams, "invalid params", nil)

	// JSON-RPC errors travel in the body with HTTP 200.
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)
	require.Contains(t, rec.Body.String(), "-32602")
}
