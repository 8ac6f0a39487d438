// Copyright 2024 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package h323

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/frostbyte73/core"
	"github.com/gammazero/deque"
	"github.com/livekit/protocol/logger"
	"github.com/looplab/fsm"

	media "github.com/livekit/h323-media-sdk"
)

var (
	ErrMediaTypeUnsupported = errors.New("media type is not supported by the connection")
	ErrSwitchInProgress     = errors.New("media switch is already in progress")
	ErrSwitchRejected       = errors.New("media switch was not started by the stack")
	ErrSwitchFailed         = errors.New("media switch failed")
	ErrConnectionClosed     = errors.New("connection closed")
)

// Mode is the media mode of a connection.
type Mode int32

const (
	ModeAudio Mode = iota
	ModeFax
)

func modeOf(fax bool) Mode {
	if fax {
		return ModeFax
	}
	return ModeAudio
}

func (m Mode) Category() media.Category {
	if m == ModeFax {
		return media.CategoryFax
	}
	return media.CategoryAudio
}

func (m Mode) String() string {
	if m == ModeFax {
		return "fax"
	}
	return "audio"
}

type SwitchState string

const (
	SwitchIdle       SwitchState = "idle"
	SwitchingToFax   SwitchState = "switching_to_fax"
	SwitchingToAudio SwitchState = "switching_to_audio"
)

const (
	eventToFax     = "to_fax"
	eventToAudio   = "to_audio"
	eventCompleted = "completed"
	eventAbort     = "abort"
)

// SwitchResult describes a completed media switch.
type SwitchResult struct {
	Requested Mode
	Actual    Mode
	// Remote is set when the switch was not requested by this side.
	Remote bool
	// Fallback is set when the remote party rejected fax. The connection
	// disables T.38 and switches back to audio on its own.
	Fallback bool
	// Err is ErrSwitchFailed when the actual mode does not match the request
	// and no fallback applies.
	Err error
}

type faxEventKind int

const (
	faxRequest faxEventKind = iota
	faxCompleted
)

type faxEvent struct {
	kind  faxEventKind
	fax   bool
	ctx   context.Context
	reply chan error
}

// mailbox is an unbounded queue drained by a single goroutine.
type mailbox[T any] struct {
	mu    sync.Mutex
	queue deque.Deque[T]
	wake  chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{wake: make(chan struct{}, 1)}
}

func (m *mailbox[T]) push(v T) {
	m.mu.Lock()
	m.queue.PushBack(v)
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox[T]) pop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue.Len() == 0 {
		var zero T
		return zero, false
	}
	return m.queue.PopFront(), true
}

// drain calls fnc for queued values until the fuse is broken.
func (m *mailbox[T]) drain(closed *core.Fuse, fnc func(v T)) {
	for {
		select {
		case <-closed.Watch():
			return
		case <-m.wake:
		}
		for !closed.IsBroken() {
			v, ok := m.pop()
			if !ok {
				break
			}
			fnc(v)
		}
	}
}

type faxStatus struct {
	state SwitchState
	mode  Mode
}

// faxSwitch serializes switch requests and completions on a single goroutine.
// The connection allow list is only shrunk from this goroutine. Results are
// delivered from a second goroutine, so a result handler may start a new switch.
type faxSwitch struct {
	log      logger.Logger
	conn     *Connection
	stack    Stack
	metrics  *Metrics
	onResult func(SwitchResult)

	fsm    *fsm.FSM
	mode   Mode
	target Mode

	mu     sync.RWMutex
	status faxStatus

	events  *mailbox[faxEvent]
	results *mailbox[SwitchResult]

	closed core.Fuse
}

func newFaxSwitch(log logger.Logger, conn *Connection, stack Stack, metrics *Metrics, onResult func(SwitchResult)) *faxSwitch {
	s := &faxSwitch{
		log:      log,
		conn:     conn,
		stack:    stack,
		metrics:  metrics,
		onResult: onResult,
		status:   faxStatus{state: SwitchIdle, mode: ModeAudio},
		events:   newMailbox[faxEvent](),
		results:  newMailbox[SwitchResult](),
	}
	idle := string(SwitchIdle)
	s.fsm = fsm.NewFSM(
		idle,
		fsm.Events{
			{Name: eventToFax, Src: []string{idle}, Dst: string(SwitchingToFax)},
			{Name: eventToAudio, Src: []string{idle}, Dst: string(SwitchingToAudio)},
			{Name: eventCompleted, Src: []string{string(SwitchingToFax), string(SwitchingToAudio)}, Dst: idle},
			{Name: eventAbort, Src: []string{string(SwitchingToFax), string(SwitchingToAudio)}, Dst: idle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.Debugw("fax switch state changed", "from", e.Src, "to", e.Dst, "event", e.Event)
			},
		},
	)
	go s.events.drain(&s.closed, s.handle)
	go s.results.drain(&s.closed, s.deliver)
	return s
}

func (s *faxSwitch) state() (SwitchState, Mode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.state, s.status.mode
}

// publish makes the current state and mode visible to FaxState as one value.
func (s *faxSwitch) publish() {
	st := faxStatus{state: SwitchState(s.fsm.Current()), mode: s.mode}
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *faxSwitch) request(ctx context.Context, enableFax bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.IsBroken() {
		return ErrConnectionClosed
	}
	reply := make(chan error, 1)
	s.events.push(faxEvent{kind: faxRequest, fax: enableFax, ctx: ctx, reply: reply})
	// The loop checks ctx before acting, so the reply always tells whether the switch started.
	select {
	case err := <-reply:
		return err
	case <-s.closed.Watch():
		return ErrConnectionClosed
	}
}

func (s *faxSwitch) completed(enabledFax bool) {
	if s.closed.IsBroken() {
		s.log.Debugw("dropping media switch completion on closed connection", "fax", enabledFax)
		return
	}
	s.events.push(faxEvent{kind: faxCompleted, fax: enabledFax})
}

func (s *faxSwitch) close() {
	s.closed.Break()
}

func (s *faxSwitch) handle(ev faxEvent) {
	switch ev.kind {
	case faxRequest:
		if err := ev.ctx.Err(); err != nil {
			ev.reply <- err
			return
		}
		ev.reply <- s.handleRequest(ev.fax)
	case faxCompleted:
		s.handleCompleted(ev.fax)
	}
}

func (s *faxSwitch) handleRequest(enableFax bool) error {
	target := modeOf(enableFax)
	if cur := SwitchState(s.fsm.Current()); cur != SwitchIdle {
		s.metrics.faxSwitch(target, resultBusy)
		return fmt.Errorf("%w: %s", ErrSwitchInProgress, cur)
	}

	formats := s.conn.AdjustMediaFormats(true, s.conn.MediaFormats())
	s.log.Debugw("switching media", "target", target.String(), "formats", formats.Names())
	if !formats.HasCategory(target.Category()) {
		s.log.Infow("media type is not supported", "target", target.String())
		s.metrics.faxSwitch(target, resultUnsupported)
		return fmt.Errorf("%w: %s", ErrMediaTypeUnsupported, target)
	}

	event := eventToAudio
	if enableFax {
		event = eventToFax
	}
	if err := s.fsm.Event(context.Background(), event); err != nil {
		return err
	}
	s.target = target
	s.publish()
	if !s.stack.SwitchFaxStreams(enableFax) {
		_ = s.fsm.Event(context.Background(), eventAbort)
		s.publish()
		s.metrics.faxSwitch(target, resultRejected)
		return ErrSwitchRejected
	}
	s.metrics.faxSwitch(target, resultStarted)
	return nil
}

func (s *faxSwitch) handleCompleted(enabledFax bool) {
	actual := modeOf(enabledFax)
	s.mode = actual

	if SwitchState(s.fsm.Current()) == SwitchIdle {
		s.publish()
		s.log.Infow("media switched by the remote party", "mode", actual.String())
		s.report(SwitchResult{Requested: actual, Actual: actual, Remote: true})
		return
	}
	target := s.target
	if err := s.fsm.Event(context.Background(), eventCompleted); err != nil {
		s.log.Warnw("unexpected fax switch transition", err)
	}
	s.publish()

	switch {
	case actual == target:
		s.log.Infow("media switched", "mode", actual.String())
		s.metrics.faxSwitch(target, resultSucceeded)
		s.report(SwitchResult{Requested: target, Actual: actual})
	case target == ModeFax:
		// T.38 stays disabled for the rest of the call.
		s.log.Infow("fax rejected by the remote party, falling back to audio")
		s.metrics.faxSwitch(target, resultFallback)
		s.metrics.faxFallback()
		s.conn.disableFormat(media.T38)
		s.report(SwitchResult{Requested: target, Actual: actual, Fallback: true})
		if err := s.handleRequest(false); err != nil {
			s.log.Warnw("cannot switch back to audio", err)
		}
	default:
		s.log.Infow("media not switched", "requested", target.String(), "mode", actual.String())
		s.metrics.faxSwitch(target, resultFailed)
		s.report(SwitchResult{Requested: target, Actual: actual, Err: ErrSwitchFailed})
	}
}

func (s *faxSwitch) report(res SwitchResult) {
	if s.onResult != nil {
		s.results.push(res)
	}
}

func (s *faxSwitch) deliver(res SwitchResult) {
	s.onResult(res)
}
