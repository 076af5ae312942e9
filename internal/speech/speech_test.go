// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

// withLookPath swaps the PATH probe for the duration of a test.
func withLookPath(t *testing.T, present map[string]bool) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if present[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestProbeAutoPicksFirstAvailable(t *testing.T) {
	withLookPath(t, map[string]bool{"espeak-ng": true, "espeak": true})

	e := Probe("auto", "auto", nil)
	if e.SynthesizerName() != "espeak-ng" {
		t.Errorf("synthesizer = %q, want espeak-ng", e.SynthesizerName())
	}
	if !e.CanSpeak() {
		t.Error("CanSpeak = false with espeak-ng present")
	}
	if e.CanListen() {
		t.Error("CanListen = true with no recognizer present")
	}
}

func TestProbeExplicitToolMissing(t *testing.T) {
	withLookPath(t, map[string]bool{"espeak": true})

	// An explicit request for an absent tool does not fall back.
	e := Probe("say", "auto", nil)
	if e.CanSpeak() {
		t.Errorf("synthesizer = %q, want none", e.SynthesizerName())
	}
}

func TestProbeNothingAvailable(t *testing.T) {
	withLookPath(t, map[string]bool{})

	e := Probe("auto", "auto", nil)
	if e.CanSpeak() || e.CanListen() {
		t.Error("bare machine must probe to nothing")
	}

	// Speaking on a silent engine is a quiet no-op.
	e.Speak("hello")
	e.Stop()

	if _, err := e.Listen(context.Background()); !errors.Is(err, ErrNoRecognizer) {
		t.Errorf("Listen = %v, want ErrNoRecognizer", err)
	}
}

func TestEdgeTTSRequiresPlayer(t *testing.T) {
	withLookPath(t, map[string]bool{"edge-tts": true})

	e := Probe("auto", "auto", nil)
	if e.CanSpeak() {
		t.Error("edge-tts without a player should disable speech")
	}
}

func TestEdgeTTSWithPlayer(t *testing.T) {
	withLookPath(t, map[string]bool{"edge-tts": true, "mpv": true})

	e := Probe("auto", "auto", nil)
	if e.SynthesizerName() != "edge-tts" {
		t.Errorf("synthesizer = %q, want edge-tts", e.SynthesizerName())
	}
}

func TestProbeRecognizer(t *testing.T) {
	withLookPath(t, map[string]bool{"hear": true, "say": true})

	e := Probe("auto", "auto", nil)
	if !e.CanListen() {
		t.Error("CanListen = false with hear present")
	}
}
