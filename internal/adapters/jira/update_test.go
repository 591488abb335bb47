/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

func TestSetFieldSkipsWhenAlreadySet(t *testing.T) {
    puts := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPut {
            puts++
            w.WriteHeader(http.StatusNoContent)
            return
        }
        fmt.Fprint(w, `{"fields":{"customfield_10001":"Open"}}`)
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    updated, err := c.SetField(context.Background(), "SB-1", "customfield_10001", "Open")
    require.NoError(t, err)
    assert.False(t, updated)
    assert.Zero(t, puts)
}

func TestSetFieldWrites(t *testing.T) {
    var body map[string]map[string]string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPut {
            require.Equal(t, "/rest/api/2/issue/SB-2", r.URL.Path)
            require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
            w.WriteHeader(http.StatusNoContent)
            return
        }
        fmt.Fprint(w, `{"fields":{"customfield_10001":null}}`)
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    updated, err := c.SetField(context.Background(), "SB-2", "customfield_10001", "In Progress")
    require.NoError(t, err)
    assert.True(t, updated)
    assert.Equal(t, "In Progress", body["fields"]["customfield_10001"])
}

func TestSetFieldWrapsFailure(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPut {
            w.WriteHeader(http.StatusForbidden)
            return
        }
        fmt.Fprint(w, `{"fields":{"customfield_10001":"Old"}}`)
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    _, err := c.SetField(context.Background(), "SB-3", "customfield_10001", "New")
    require.Error(t, err)
    var ue *domain.UpdateError
    require.True(t, errors.As(err, &ue))
    assert.Equal(t, "SB-3", ue.Key)
}

func TestFieldStringShapes(t *testing.T) {
    assert.Equal(t, "Open", fieldString(json.RawMessage(`"Open"`)))
    assert.Equal(t, "Open", fieldString(json.RawMessage(`{"value":"Open"}`)))
    assert.Equal(t, "", fieldString(json.RawMessage(`null`)))
}
