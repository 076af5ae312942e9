// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/loreline-tui/internal/api"
	"github.com/jeranaias/loreline-tui/internal/auth"
	"github.com/jeranaias/loreline-tui/internal/config"
	"github.com/jeranaias/loreline-tui/internal/history"
)

// HandleStatus prints connection, account, and archive status.
func HandleStatus(ctx context.Context, cfg *config.Config, store *auth.Store, client *api.Client, archive *history.Archive) error {
	fmt.Println("loreline status")
	fmt.Println()
	fmt.Printf("  API endpoint:  %s\n", cfg.Server.APIURL)
	fmt.Printf("  WS endpoint:   %s\n", cfg.Server.WSURL)

	if !store.Authenticated() {
		fmt.Println("  Account:       signed out")
		return nil
	}

	user, err := client.Me(ctx)
	switch {
	case err == nil:
		fmt.Printf("  Account:       %s (%s)\n", user.Email, user.FullName)
	default:
		fmt.Printf("  Account:       credentials stored, server unreachable (%v)\n", err)
	}

	if archive != nil {
		sessions, serr := archive.SessionCount(ctx)
		messages, merr := archive.MessageCount(ctx)
		if serr == nil && merr == nil {
			fmt.Printf("  Local archive: %d sessions, %d messages\n", sessions, messages)
		}
	}
	return nil
}
