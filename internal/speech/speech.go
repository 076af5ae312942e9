// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech provides voice output and input through whatever
// programs the host machine happens to have.
//
// Nothing here is bundled: the package probes PATH once at startup for
// a synthesizer (say, espeak-ng, espeak, edge-tts) and a recognizer
// (hear, vosk-transcriber) and degrades gracefully when none is found.
// A machine without speech tools simply runs silent; it never errors
// the application.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Probe order. The macOS tools come first since they need no setup.
var (
	synthesizers = []string{"say", "espeak-ng", "espeak", "edge-tts"}
	recognizers  = []string{"hear", "vosk-transcriber"}
	players      = []string{"afplay", "mpv", "ffplay"}
)

// Errors for absent tooling.
var (
	ErrNoSynthesizer = errors.New("no speech synthesizer available")
	ErrNoRecognizer  = errors.New("no speech recognizer available")
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Engine drives speech through external programs. Playback is
// cancellable: a new Speak or an explicit Stop kills the current one.
type Engine struct {
	synth  string
	recog  string
	player string
	voice  string
	log    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Probe locates speech tooling on PATH. Pass "auto" (or "") to take
// the first tool found, or a specific program name to require it.
func Probe(synthesizer, recognizer string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log}
	e.synth = probeOne(synthesizer, synthesizers)
	e.recog = probeOne(recognizer, recognizers)
	if e.synth == "edge-tts" {
		// edge-tts writes audio to a file; it needs a player to be useful.
		e.player = probeOne("auto", players)
		if e.player == "" {
			log.Debug("edge-tts found but no audio player; speech disabled")
			e.synth = ""
		}
	}

	log.Debug("speech probe",
		zap.String("synthesizer", orNone(e.synth)),
		zap.String("recognizer", orNone(e.recog)))
	return e
}

// probeOne resolves one tool: explicit names are looked up directly,
// "auto" walks the candidate list.
func probeOne(want string, candidates []string) string {
	if want != "" && want != "auto" {
		if _, err := lookPath(want); err == nil {
			return want
		}
		return ""
	}
	for _, name := range candidates {
		if _, err := lookPath(name); err == nil {
			return name
		}
	}
	return ""
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// SetVoice selects the synthesizer voice. Empty means the tool default.
func (e *Engine) SetVoice(voice string) {
	e.mu.Lock()
	e.voice = voice
	e.mu.Unlock()
}

// CanSpeak reports whether a synthesizer was found.
func (e *Engine) CanSpeak() bool { return e.synth != "" }

// CanListen reports whether a recognizer was found.
func (e *Engine) CanListen() bool { return e.recog != "" }

// SynthesizerName returns the probed synthesizer, or "".
func (e *Engine) SynthesizerName() string { return e.synth }

// =============================================================================
// SPEAKING
// =============================================================================

// Speak voices text asynchronously, cancelling any playback already in
// progress. Missing tooling and playback failures are logged, not
// returned: speech is a garnish, never a reason to interrupt the user.
func (e *Engine) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" || e.synth == "" {
		return
	}

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	voice := e.voice
	e.mu.Unlock()

	go func() {
		defer cancel()
		if err := e.run(ctx, text, voice); err != nil && ctx.Err() == nil {
			e.log.Debug("speech playback failed", zap.Error(err))
		}
	}()
}

// Stop cancels any playback in progress.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
}

// run invokes the synthesizer and blocks until playback finishes or
// ctx is cancelled.
func (e *Engine) run(ctx context.Context, text, voice string) error {
	switch e.synth {
	case "say":
		args := []string{}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, text)
		return exec.CommandContext(ctx, "say", args...).Run()

	case "espeak-ng", "espeak":
		args := []string{}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, text)
		return exec.CommandContext(ctx, e.synth, args...).Run()

	case "edge-tts":
		tmp, err := os.CreateTemp("", "loreline-tts-*.mp3")
		if err != nil {
			return err
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		args := []string{"--text", text, "--write-media", tmp.Name()}
		if voice != "" {
			args = append(args, "--voice", voice)
		}
		if err := exec.CommandContext(ctx, "edge-tts", args...).Run(); err != nil {
			return fmt.Errorf("edge-tts: %w", err)
		}
		return e.play(ctx, tmp.Name())

	default:
		return ErrNoSynthesizer
	}
}

// play sends a rendered audio file through the probed player.
func (e *Engine) play(ctx context.Context, path string) error {
	switch e.player {
	case "afplay":
		return exec.CommandContext(ctx, "afplay", path).Run()
	case "mpv":
		return exec.CommandContext(ctx, "mpv", "--no-video", "--really-quiet", path).Run()
	case "ffplay":
		return exec.CommandContext(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path).Run()
	default:
		return fmt.Errorf("no player for %s", filepath.Base(path))
	}
}

// =============================================================================
// LISTENING
// =============================================================================

// Listen captures one utterance and returns the transcription. It
// blocks until the recognizer prints a result or ctx is cancelled.
func (e *Engine) Listen(ctx context.Context) (string, error) {
	if e.recog == "" {
		return "", ErrNoRecognizer
	}

	var args []string
	if e.recog == "hear" {
		// Exit after the first pause instead of transcribing forever.
		args = []string{"-p"}
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.recog, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w", e.recog, err)
	}
	return strings.TrimSpace(out.String()), nil
}
