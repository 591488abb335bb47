/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "errors"
    "fmt"
    "os"

    "github.com/TiiMonatisa/SBSA/internal/domain"
)

func main() {
    if err := rootCmd.Execute(); err != nil {
        var ce *domain.ConfigError
        if errors.As(err, &ce) {
            fmt.Fprintln(os.Stderr, "config:", err)
            os.Exit(2)
        }
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}
