/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

// Validate checks the settings a backfill run depends on. It is called after
// flags are layered on top of Load, so everything here is user-visible
// misconfiguration, reported before any network traffic.
func (c Config) Validate() error {
    switch c.Target {
    case TargetCloud, TargetDC:
    default:
        return domain.Configf("unknown target %q (want %s or %s)", c.Target, TargetCloud, TargetDC)
    }
    if c.BaseURL() == "" {
        if c.Target == TargetDC { return domain.Configf("DC_BASE_URL is required for target dc") }
        return domain.Configf("CLOUD_BASE_URL is required for target cloud")
    }
    if c.Target == TargetCloud {
        if c.CloudEmail == "" || c.CloudAPIToken == "" {
            return domain.Configf("cloud target needs CLOUD_EMAIL and CLOUD_API_TOKEN")
        }
    } else {
        if c.DCToken == "" && (c.DCUsername == "" || c.DCPassword == "") {
            return domain.Configf("dc target needs DC_API_TOKEN or DC_USERNAME/DC_PASSWORD")
        }
    }
    if c.JQL == "" { return domain.Configf("a JQL query is required (--jql or BACKFILL_JQL)") }
    if c.PageSize <= 0 || c.PageSize > MaxPageSize {
        return domain.Configf("page size must be between 1 and %d, got %d", MaxPageSize, c.PageSize)
    }
    if c.Concurrency <= 0 {
        return domain.Configf("concurrency must be positive, got %d", c.Concurrency)
    }
    if !c.DryRun && c.CustomFieldID == "" {
        return domain.Configf("JIRA_CUSTOM_FIELD_ID is required unless --dry-run is set")
    }
    return nil
}
