/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "github.com/spf13/cobra"

    "github.com/TiiMonatisa/SBSA/internal/config"
)

var (
    flagJQL         string
    flagTarget      string
    flagField       string
    flagPageSize    int
    flagConcurrency int
    flagDryRun      bool
    flagPrintJSON   bool
)

var rootCmd = &cobra.Command{
    Use:           "backfill",
    Short:         "Backfill a first-status custom field on Jira issues",
    Long:          "Resolves the status each matching Jira issue held at creation time from its changelog and writes it into a custom field.",
    SilenceUsage:  true,
    SilenceErrors: true,
}

func init() {
    pf := rootCmd.PersistentFlags()
    pf.StringVar(&flagJQL, "jql", "", "JQL query selecting the issues to backfill")
    pf.StringVar(&flagTarget, "target", "", "Jira dialect: cloud or dc")
    pf.StringVar(&flagField, "field", "", "custom field id to write, e.g. customfield_10001")
    pf.IntVar(&flagPageSize, "page-size", 0, "search page size (max 100)")
    pf.IntVar(&flagConcurrency, "concurrency", 0, "issues processed in parallel")
    pf.BoolVar(&flagDryRun, "dry-run", false, "resolve and report without writing to Jira")
    pf.BoolVar(&flagPrintJSON, "print-json", false, "emit the full report as JSON on stdout")

    rootCmd.AddCommand(runCmd)
    rootCmd.AddCommand(serveCmd)
}

// loadConfig layers explicitly set flags over the environment.
func loadConfig() config.Config {
    cfg := config.Load()
    pf := rootCmd.PersistentFlags()
    if pf.Changed("jql") { cfg.JQL = flagJQL }
    if pf.Changed("target") { cfg.Target = flagTarget }
    if pf.Changed("field") { cfg.CustomFieldID = flagField }
    if pf.Changed("page-size") { cfg.PageSize = flagPageSize }
    if pf.Changed("concurrency") { cfg.Concurrency = flagConcurrency }
    if pf.Changed("dry-run") { cfg.DryRun = flagDryRun }
    if pf.Changed("print-json") { cfg.PrintJSON = flagPrintJSON }
    return cfg
}
