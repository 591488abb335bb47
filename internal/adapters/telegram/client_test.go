/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package telegram

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/TiiMonatisa/SBSA/internal/config"
)

func TestBroadcastHitsEveryChat(t *testing.T) {
    var got []int64
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/bottok/sendMessage", r.URL.Path)
        var body struct {
            ChatID int64  `json:"chat_id"`
            Text   string `json:"text"`
        }
        require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
        assert.Equal(t, "backfill: 3 issues, 2 updated, 0 skipped, 1 failed", body.Text)
        got = append(got, body.ChatID)
        w.Write([]byte(`{"ok":true}`))
    }))
    defer srv.Close()

    c := NewClient(config.Config{TelegramToken: "tok", TelegramChatIDs: []int64{10, 20}}, zerolog.Nop())
    c.baseURL = srv.URL
    require.NoError(t, c.Broadcast(context.Background(), "backfill: 3 issues, 2 updated, 0 skipped, 1 failed"))
    assert.Equal(t, []int64{10, 20}, got)
}

func TestBroadcastKeepsGoingOnFailure(t *testing.T) {
    calls := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        calls++
        if calls == 1 {
            w.WriteHeader(http.StatusBadRequest)
            return
        }
        w.Write([]byte(`{"ok":true}`))
    }))
    defer srv.Close()

    c := NewClient(config.Config{TelegramToken: "tok", TelegramChatIDs: []int64{1, 2}}, zerolog.Nop())
    c.baseURL = srv.URL
    err := c.Broadcast(context.Background(), "x")
    require.Error(t, err)
    assert.Equal(t, 2, calls)
}

func TestSendMessageRequiresToken(t *testing.T) {
    c := NewClient(config.Config{}, zerolog.Nop())
    require.Error(t, c.SendMessage(context.Background(), 1, "x"))
}
