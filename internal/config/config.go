/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

const (
    TargetCloud = "cloud"
    TargetDC    = "dc"

    // Documented maximum page size for the Jira search endpoints.
    MaxPageSize = 100
)

type Config struct {
    AppEnv   string
    HTTPAddr string

    DBDSN string

    // Which Jira dialect to talk to: cloud or dc.
    Target string

    CloudBaseURL  string
    CloudEmail    string
    CloudAPIToken string

    DCBaseURL  string
    DCToken    string
    DCUsername string
    DCPassword string

    JQL           string
    CustomFieldID string
    PageSize      int
    Concurrency   int
    DryRun        bool
    PrintJSON     bool

    CABundle           string
    InsecureSkipVerify bool
    HTTPTimeout        time.Duration

    BackfillCron    string
    TelegramToken   string
    TelegramChatIDs []int64
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func boolenv(key string) bool {
    v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
    return v == "1" || v == "true" || v == "yes"
}

func parseInt64s(csv string) []int64 {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]int64, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        n, err := strconv.ParseInt(p, 10, 64)
        if err == nil { out = append(out, n) }
    }
    return out
}

// Load reads configuration from the environment, picking up a local .env
// file first when one exists. Flag values are layered on top by the command
// layer before Validate runs.
func Load() Config {
    _ = godotenv.Load()
    return Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),

        DBDSN: getenv("DB_DSN", ""),

        Target: getenv("JIRA_TARGET", TargetCloud),

        CloudBaseURL:  strings.TrimRight(getenv("CLOUD_BASE_URL", ""), "/"),
        CloudEmail:    getenv("CLOUD_EMAIL", ""),
        CloudAPIToken: getenv("CLOUD_API_TOKEN", ""),

        DCBaseURL:  strings.TrimRight(getenv("DC_BASE_URL", ""), "/"),
        DCToken:    getenv("DC_API_TOKEN", ""),
        DCUsername: getenv("DC_USERNAME", ""),
        DCPassword: getenv("DC_PASSWORD", ""),

        JQL:           getenv("BACKFILL_JQL", ""),
        CustomFieldID: getenv("JIRA_CUSTOM_FIELD_ID", ""),
        PageSize:      atoi("BACKFILL_PAGE_SIZE", 100),
        Concurrency:   atoi("BACKFILL_CONCURRENCY", 8),

        CABundle:           getenv("JIRA_CA_BUNDLE", ""),
        InsecureSkipVerify: boolenv("JIRA_INSECURE_SKIP_VERIFY"),
        HTTPTimeout:        dur("HTTP_TIMEOUT", 60*time.Second),

        BackfillCron:    getenv("BACKFILL_CRON", ""),
        TelegramToken:   getenv("TELEGRAM_BOT_TOKEN", ""),
        TelegramChatIDs: parseInt64s(getenv("TELEGRAM_CHAT_IDS", "")),
    }
}

// BaseURL returns the Jira base URL for the selected target.
func (c Config) BaseURL() string {
    if c.Target == TargetDC { return c.DCBaseURL }
    return c.CloudBaseURL
}
