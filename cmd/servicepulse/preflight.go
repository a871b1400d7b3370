package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newPreflightCmd sanity-checks the environment before a deploy. It never
// touches the network; it only reads env vars.
func newPreflightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check environment configuration without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			failed := false

			fail := func(msg string) {
				fmt.Fprintln(errOut, "✖", msg)
				failed = true
			}
			warn := func(msg string) { fmt.Fprintln(errOut, "⚠", msg) }
			ok := func(msg string) { fmt.Fprintln(out, "✔", msg) }

			redis := strings.TrimSpace(os.Getenv("REDIS_URL"))
			db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
			smtpHost := strings.TrimSpace(os.Getenv("SMTP_HOST"))
			smtpFrom := strings.TrimSpace(os.Getenv("SMTP_FROM"))
			addr := strings.TrimSpace(os.Getenv("ADDR"))

			if redis == "" {
				warn("REDIS_URL empty — the default redis://localhost:6379/0 will be used.")
			} else if !strings.HasPrefix(redis, "redis://") && !strings.HasPrefix(redis, "rediss://") {
				fail("REDIS_URL must start with redis:// or rediss://")
			} else {
				ok("REDIS_URL=" + redis)
			}

			if db == "" {
				warn("DATABASE_URL empty — status records will live in memory and vanish on exit.")
			} else {
				ok("DATABASE_URL present")
			}

			if smtpHost == "" {
				warn("SMTP_HOST empty — email channel disabled; only durable log and broadcast will run.")
			} else {
				ok("SMTP_HOST=" + smtpHost)
				if smtpFrom == "" {
					warn("SMTP_FROM empty — the default monitor@localhost sender will be used.")
				}
			}

			if addr == "" {
				warn("ADDR empty — serve mode will bind the default 127.0.0.1:8080.")
			} else {
				ok("ADDR=" + addr)
			}

			if failed {
				return fmt.Errorf("preflight failed")
			}
			ok("preflight passed")
			return nil
		},
	}
}
