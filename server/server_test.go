package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bplus "myjql/bplustree"
	"myjql/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	table, err := bplus.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })

	ts := httptest.NewServer(New(table, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postRow(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/rows", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

type listResponse struct {
	Rows  []types.Row `json:"rows"`
	Count int         `json:"count"`
}

func decodeList(t *testing.T, resp *http.Response) listResponse {
	t.Helper()
	defer resp.Body.Close()
	var out listResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestInsertAndFetch(t *testing.T) {
	ts := newTestServer(t)

	resp := postRow(t, ts, `{"a": 1, "b": "apple"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postRow(t, ts, `{"a": 2, "b": "banana"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/rows")
	require.NoError(t, err)
	list := decodeList(t, resp)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, []types.Row{{A: 1, B: "apple"}, {A: 2, B: "banana"}}, list.Rows)

	resp, err = http.Get(ts.URL + "/rows/apple")
	require.NoError(t, err)
	list = decodeList(t, resp)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, uint32(1), list.Rows[0].A)

	resp, err = http.Get(ts.URL + "/rows/missing")
	require.NoError(t, err)
	list = decodeList(t, resp)
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Rows)
}

func TestInsertValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := postRow(t, ts, `{"a": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postRow(t, ts, `{"a": 1, "b": "aaaaaaaaaaaa"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postRow(t, ts, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteByKey(t *testing.T) {
	ts := newTestServer(t)

	postRow(t, ts, `{"a": 1, "b": "apple"}`).Body.Close()
	postRow(t, ts, `{"a": 2, "b": "apple"}`).Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/rows/apple", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Deleted int `json:"deleted"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Deleted)

	resp, err = http.Get(ts.URL + "/rows")
	require.NoError(t, err)
	list := decodeList(t, resp)
	assert.Equal(t, 0, list.Count)
}
