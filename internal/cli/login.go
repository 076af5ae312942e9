// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/jeranaias/loreline-tui/internal/api"
)

// HandleLogin prompts for credentials and signs in. The password is
// read with echo disabled.
func HandleLogin(ctx context.Context, client *api.Client) error {
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user, err := client.Me(ctx)
	if err != nil {
		// Signed in but the profile fetch hiccuped; still a success.
		fmt.Println("Signed in.")
		return nil
	}
	fmt.Printf("Signed in as %s.\n", user.Email)
	return nil
}

// HandleSignup prompts for account details, registers, and signs in.
func HandleSignup(ctx context.Context, client *api.Client) error {
	fullName, err := promptLine("Full name: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if _, err := client.Signup(ctx, email, password, fullName); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	if err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("account created but sign-in failed: %w", err)
	}
	fmt.Printf("Account created; signed in as %s.\n", email)
	return nil
}

// HandleLogout discards the stored credential pair.
func HandleLogout(client *api.Client) error {
	if err := client.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

// promptLine reads one trimmed line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a line with terminal echo disabled, falling
// back to a plain read when stdin is not a terminal (pipes, tests).
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return promptLineNoEcho()
	}
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func promptLineNoEcho() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
