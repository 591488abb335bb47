/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package telegram

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
)

type Client struct {
    token   string
    chatIDs []int64
    baseURL string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        token:   cfg.TelegramToken,
        chatIDs: cfg.TelegramChatIDs,
        baseURL: "https://api.telegram.org",
        http:    &http.Client{Timeout: 10 * time.Second},
        log:     log,
    }
}

// SendMessage sends plain text; no parse_mode so run summaries with special
// characters never trip Telegram's markdown parser.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
    if c.token == "" || chatID == 0 { return fmt.Errorf("telegram: missing token or chat id") }
    url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
    body := map[string]any{"chat_id": chatID, "text": text, "disable_web_page_preview": true}
    b, _ := json.Marshal(body)
    req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        bodyBytes, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("telegram sendMessage status=%d body=%s", resp.StatusCode, string(bodyBytes))
    }
    return nil
}

// Broadcast delivers the text to every configured chat, keeping going past
// individual failures.
func (c *Client) Broadcast(ctx context.Context, text string) error {
    var lastErr error
    for _, id := range c.chatIDs {
        if err := c.SendMessage(ctx, id, text); err != nil {
            c.log.Error().Err(err).Int64("chat_id", id).Msg("telegram send failed")
            lastErr = err
        }
    }
    return lastErr
}
