// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/loreline-tui/internal/config"
)

// HandleConfig implements config show/get/set.
func HandleConfig(args Args, cfg *config.Config) error {
	switch args.Subcommand {
	case "", "show", "list":
		return showConfig(cfg)
	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: loreline config get <key>")
		}
		val, err := getConfigValue(cfg, args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil
	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("usage: loreline config set <key> <value>")
		}
		if err := setConfigValue(cfg, args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}

func showConfig(cfg *config.Config) error {
	for _, key := range configKeys {
		val, err := getConfigValue(cfg, key)
		if err != nil {
			return err
		}
		fmt.Printf("  %-28s %s\n", key, val)
	}
	return nil
}

var configKeys = []string{
	"server.api_url",
	"server.ws_url",
	"server.timeout_secs",
	"auth.refresh_interval_mins",
	"speech.synthesizer",
	"speech.recognizer",
	"log.level",
	"log.path",
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "server.api_url":
		return cfg.Server.APIURL, nil
	case "server.ws_url":
		return cfg.Server.WSURL, nil
	case "server.timeout_secs":
		return strconv.Itoa(cfg.Server.RequestTimeoutSecs), nil
	case "auth.refresh_interval_mins":
		return strconv.Itoa(cfg.Auth.RefreshIntervalMins), nil
	case "speech.synthesizer":
		return cfg.Speech.Synthesizer, nil
	case "speech.recognizer":
		return cfg.Speech.Recognizer, nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.path":
		return cfg.Log.Path, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func setConfigValue(cfg *config.Config, key, val string) error {
	switch key {
	case "server.api_url":
		cfg.Server.APIURL = val
	case "server.ws_url":
		cfg.Server.WSURL = val
	case "server.timeout_secs":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		cfg.Server.RequestTimeoutSecs = n
	case "auth.refresh_interval_mins":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		cfg.Auth.RefreshIntervalMins = n
	case "speech.synthesizer":
		cfg.Speech.Synthesizer = val
	case "speech.recognizer":
		cfg.Speech.Recognizer = val
	case "log.level":
		cfg.Log.Level = val
	case "log.path":
		cfg.Log.Path = val
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
