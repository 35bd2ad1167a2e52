// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/chatcmdlog/internal/classifier"
	"github.com/holomush/chatcmdlog/internal/recorder"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

// DefaultMaxLineSize bounds a single event line, newline included.
const DefaultMaxLineSize = 1 << 20

// Hooks is the recorder surface the stream drives.
type Hooks interface {
	Init(ctx context.Context)
	Reload(ctx context.Context) error
	OnNewSave(ctx context.Context) (bool, error)
	OnPlayerChat(ctx context.Context, ev recorder.ChatEvent) (classifier.Decision, error)
}

// Stream reads host events and dispatches them one at a time.
type Stream struct {
	hooks       Hooks
	roster      *Roster
	logger      *slog.Logger
	maxLineSize int
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithLogger sets the stream logger.
func WithLogger(logger *slog.Logger) StreamOption {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithMaxLineSize overrides DefaultMaxLineSize. Longer lines are skipped.
func WithMaxLineSize(n int) StreamOption {
	return func(s *Stream) {
		s.maxLineSize = n
	}
}

// NewStream creates a Stream. The roster is updated from connect and
// disconnect events and should be the recorder's privilege resolver.
func NewStream(hooks Hooks, roster *Roster, opts ...StreamOption) (*Stream, error) {
	if hooks == nil {
		return nil, oops.Errorf("recorder hooks are required")
	}
	if roster == nil {
		return nil, oops.Errorf("roster is required")
	}
	s := &Stream{hooks: hooks, roster: roster, logger: slog.Default(), maxLineSize: DefaultMaxLineSize}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run dispatches events from r until EOF or ctx is cancelled. Malformed
// lines, including lines longer than the maximum line size, are logged and
// skipped.
//
// A pending Read cannot be interrupted. On cancellation r is closed when it
// is an io.Closer and Run waits for the reader goroutine; any other reader
// keeps that goroutine until its current Read returns, so callers that
// cancel should pass a closable reader.
func (s *Stream) Run(ctx context.Context, r io.Reader) error {
	lineCh := make(chan rawLine)
	errCh := make(chan error, 1)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Go(func() {
		br := bufio.NewReaderSize(r, s.maxLineSize)
		for {
			line, err := readLine(br)
			if len(line.data) > 0 || line.oversized {
				select {
				case lineCh <- line:
				case <-done:
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				errCh <- err
				return
			}
		}
	})

	for {
		select {
		case <-ctx.Done():
			close(done)
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
				wg.Wait()
			}
			return ctx.Err()

		case err := <-errCh:
			close(done)
			wg.Wait()
			if err != nil && !errors.Is(err, io.ErrClosedPipe) {
				return oops.Wrapf(err, "read event stream")
			}
			s.logger.InfoContext(ctx, "event stream closed")
			return nil

		case line := <-lineCh:
			if line.oversized {
				s.skipOversized()
				continue
			}
			s.handleLine(ctx, line.data)
		}
	}
}

// rawLine is one line of the stream without its line ending.
type rawLine struct {
	data      []byte
	oversized bool
}

// readLine reads up to the next newline. A line that does not fit in the
// reader's buffer is consumed to its end and reported as oversized.
func readLine(br *bufio.Reader) (rawLine, error) {
	frag, err := br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = br.ReadSlice('\n')
		}
		return rawLine{oversized: true}, err
	}
	frag = bytes.TrimRight(frag, "\r\n")
	return rawLine{data: append([]byte(nil), frag...)}, err
}

func (s *Stream) skipOversized() {
	Events.WithLabelValues("unknown", StatusInvalid).Inc()
	err := oops.Code(CodeInvalidEvent).
		With("max_line_size", s.maxLineSize).
		Errorf("event line exceeds %d bytes", s.maxLineSize)
	errutil.LogWarn(s.logger, "skipping invalid host event", err)
}

func (s *Stream) handleLine(ctx context.Context, line []byte) {
	ev, err := Decode(line)
	if err != nil {
		if len(line) > 0 {
			Events.WithLabelValues("unknown", StatusInvalid).Inc()
			errutil.LogWarn(s.logger, "skipping invalid host event", err)
		}
		return
	}

	status := StatusDispatched
	if err := s.Dispatch(ctx, ev); err != nil {
		status = StatusFailed
		errutil.LogWarn(s.logger, "host event failed", err)
	}
	Events.WithLabelValues(string(ev.Type), status).Inc()
}

// Dispatch applies a single decoded event.
func (s *Stream) Dispatch(ctx context.Context, ev HostEvent) error {
	switch ev.Type {
	case EventInit:
		s.hooks.Init(ctx)
		return nil
	case EventReload:
		return s.hooks.Reload(ctx)
	case EventNewSave:
		_, err := s.hooks.OnNewSave(ctx)
		return err
	case EventConnect:
		s.roster.Connect(ev.PlayerID, ev.Name, ev.Privilege())
		ConnectedPlayers.Set(float64(s.roster.Len()))
		s.logger.DebugContext(ctx, "player connected", "player_id", ev.PlayerID, "auth_level", ev.AuthLevel)
		return nil
	case EventDisconnect:
		s.roster.Disconnect(ev.PlayerID)
		ConnectedPlayers.Set(float64(s.roster.Len()))
		return nil
	case EventChat:
		name := ev.Name
		if name == "" {
			name, _ = s.roster.Name(ev.PlayerID)
		}
		_, err := s.hooks.OnPlayerChat(ctx, recorder.ChatEvent{
			PlayerID:   ev.PlayerID,
			PlayerName: name,
			Message:    ev.Message,
			Channel:    ev.Channel,
		})
		return err
	default:
		return oops.Code(CodeInvalidEvent).With("type", string(ev.Type)).Errorf("unknown event type %q", ev.Type)
	}
}
