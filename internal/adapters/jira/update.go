/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"

    "github.com/TiiMonatisa/SBSA/internal/domain"
)

// SetField writes value into the custom field of the issue. It reads the
// field first and skips the PUT when the stored value already matches, so
// re-running a backfill does not touch issues that are already correct.
// The returned bool reports whether a write actually happened.
func (c *Client) SetField(ctx context.Context, key, fieldID, value string) (bool, error) {
    current, err := c.fieldValue(ctx, key, fieldID)
    if err != nil { return false, &domain.UpdateError{Key: key, Err: err} }
    if current == value { return false, nil }

    body := map[string]any{"fields": map[string]any{fieldID: value}}
    u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), nil)
    if err := c.doJSON(ctx, http.MethodPut, u, body, nil); err != nil {
        return false, &domain.UpdateError{Key: key, Err: err}
    }
    return true, nil
}

func (c *Client) fieldValue(ctx context.Context, key, fieldID string) (string, error) {
    q := url.Values{}
    q.Set("fields", fieldID)
    u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), q)
    var issue struct {
        Fields map[string]json.RawMessage `json:"fields"`
    }
    if err := c.doJSON(ctx, http.MethodGet, u, nil, &issue); err != nil { return "", err }
    raw, ok := issue.Fields[fieldID]
    if !ok { return "", nil }
    return fieldString(raw), nil
}

// Custom fields come back as a bare string, null, or an option object with
// a value key depending on the field type.
func fieldString(raw json.RawMessage) string {
    var s string
    if err := json.Unmarshal(raw, &s); err == nil { return s }
    var opt struct {
        Value string `json:"value"`
    }
    if err := json.Unmarshal(raw, &opt); err == nil && opt.Value != "" { return opt.Value }
    var v any
    if err := json.Unmarshal(raw, &v); err == nil && v != nil { return fmt.Sprint(v) }
    return ""
}
