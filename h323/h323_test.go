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
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/livekit/protocol/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	media "github.com/livekit/h323-media-sdk"
	"github.com/livekit/h323-media-sdk/q931"
)

type fakeStack struct {
	mu       sync.Mutex
	all      media.FormatList
	local    media.FormatList
	switches []bool
	refuse   bool
	onSwitch func(fax bool)
}

func newFakeStack() *fakeStack {
	all := media.FormatList{media.G729A, media.G711ULaw, media.H264, media.T38, media.RFC2833, media.G711ALaw}
	return &fakeStack{
		all:   all,
		local: slices.Clone(all),
	}
}

func (s *fakeStack) MediaFormats() media.FormatList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all
}

func (s *fakeStack) LocalMediaFormats() media.FormatList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

func (s *fakeStack) SwitchFaxStreams(fax bool) bool {
	s.mu.Lock()
	s.switches = append(s.switches, fax)
	refuse, fnc := s.refuse, s.onSwitch
	s.mu.Unlock()
	if refuse {
		return false
	}
	if fnc != nil {
		fnc(fax)
	}
	return true
}

func (s *fakeStack) Switches() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.switches)
}

type testConn struct {
	*Connection
	stack   *fakeStack
	results chan SwitchResult
}

func newTestEndpoint(t *testing.T, conf EndpointConfig, opts ...EndpointOption) *Endpoint {
	return NewEndpoint(logger.NewTestLogger(t), conf, opts...)
}

func newTestConn(t *testing.T, e *Endpoint, call *Call, opts StringOptions) *testConn {
	tc := &testConn{
		stack:   newFakeStack(),
		results: make(chan SwitchResult, 16),
	}
	tc.Connection = e.NewConnection(call, ConnectionParams{
		Stack:   tc.stack,
		Options: opts,
		OnFaxSwitched: func(_ *Connection, res SwitchResult) {
			tc.results <- res
		},
	})
	t.Cleanup(tc.Close)
	return tc
}

func (c *testConn) waitResult(t *testing.T) SwitchResult {
	t.Helper()
	select {
	case res := <-c.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for switch result")
		return SwitchResult{}
	}
}

func (c *testConn) requireState(t *testing.T, state SwitchState, mode Mode) {
	t.Helper()
	require.Eventually(t, func() bool {
		s, m := c.FaxState()
		return s == state && m == mode
	}, 2*time.Second, 5*time.Millisecond)
}

func TestBuildAllowList(t *testing.T) {
	log := logger.NewTestLogger(t)
	registry := media.RegisteredFormats()
	tail := media.FormatList{media.T38, media.RFC2833}

	t.Run("default", func(t *testing.T) {
		list := BuildAllowList(log, nil, registry)
		require.Equal(t, append(media.FormatList{media.G711ULaw, media.G711ALaw}, tail...), list)
	})

	t.Run("selectors", func(t *testing.T) {
		list := BuildAllowList(log, []string{"G.722*", "G.711-ALaw-64k", "G.711*"}, registry)
		require.Equal(t, append(media.FormatList{media.G722, media.G711ALaw, media.G711ULaw}, tail...), list)
	})

	t.Run("negation", func(t *testing.T) {
		list := BuildAllowList(log, []string{"!G.711*"}, registry)
		require.False(t, list.Contains(media.G711ULaw))
		require.False(t, list.Contains(media.G711ALaw))
		require.True(t, list.Contains(media.GSM0610))
		require.True(t, list.Contains(media.G729A))
	})

	t.Run("only eligible audio", func(t *testing.T) {
		list := BuildAllowList(log, []string{"*"}, registry)
		require.Equal(t, tail, list[len(list)-2:])
		for _, f := range list[:len(list)-2] {
			require.Equal(t, media.CategoryAudio, f.Category, f.Name)
			require.True(t, f.Transportable, f.Name)
			require.True(t, f.IsValidForProtocol(media.ProtocolH323), f.Name)
		}
		require.False(t, list.Contains(media.Linear16), "not transportable")
		require.False(t, list.Contains(media.Opus), "not valid for H.323")
		require.False(t, list.Contains(media.H264))
		require.Equal(t, AudioFormats(registry), list[:len(list)-2])
	})

	t.Run("no match", func(t *testing.T) {
		list := BuildAllowList(log, []string{"AMR*", " "}, registry)
		require.Equal(t, tail, list)
	})

	t.Run("fax selector", func(t *testing.T) {
		list := BuildAllowList(log, []string{"T.38", "G.711-uLaw-64k"}, registry)
		require.Equal(t, media.FormatList{media.G711ULaw, media.T38, media.RFC2833}, list)
	})
}

func TestEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	e := newTestEndpoint(t, EndpointConfig{FastStart: true, BearerCapability: "0:8:1:2"}, WithMetrics(m))
	bc, ok := e.BearerCapability()
	require.True(t, ok)
	require.Equal(t, "0:8:1:2", bc.String())
	require.True(t, e.FastStart())
	require.True(t, e.H245Tunneling())

	e = newTestEndpoint(t, EndpointConfig{DisableTunneling: true, BearerCapability: "0:8:1"}, WithMetrics(m))
	_, ok = e.BearerCapability()
	require.False(t, ok)
	require.False(t, e.FastStart())
	require.False(t, e.H245Tunneling())
	require.Equal(t, 1.0, testutil.ToFloat64(m.bearerInvalid.WithLabelValues("endpoint")))

	e = newTestEndpoint(t, EndpointConfig{}, WithRegistry(media.FormatList{media.G711ULaw, media.G722, media.T38}))
	require.Equal(t, media.FormatList{media.G711ULaw, media.G722}, e.AudioFormats())
}

func TestConnectionAllowListCopy(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	call := NewCall("")
	c1 := newTestConn(t, e, call, StringOptions{OptionDisableT38: ""})
	c2 := newTestConn(t, e, call, nil)

	require.False(t, c1.AllowList().Contains(media.T38))
	require.True(t, c2.AllowList().Contains(media.T38))
	require.True(t, e.AllowList().Contains(media.T38))

	list := c2.AllowList()
	list[0] = media.G729A
	require.Equal(t, media.G711ULaw, c2.AllowList()[0])

	require.Same(t, c1.Connection, call.Connection(0))
	require.Same(t, c2.Connection, call.Connection(1))
	require.NotEqual(t, c1.ID(), c2.ID())
}

func TestBearerCapabilityPrecedence(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := newTestEndpoint(t, EndpointConfig{BearerCapability: "0:8:1:2"}, WithMetrics(m))
	call := NewCall("call")

	inherited := newTestConn(t, e, call, nil)
	bc, ok := inherited.BearerCapability()
	require.True(t, ok)
	require.Equal(t, "0:8:1:2", bc.String())

	override := newTestConn(t, e, call, StringOptions{OptionBearerCapability: "1:5:64:4"})
	bc, ok = override.BearerCapability()
	require.True(t, ok)
	require.Equal(t, "1:5:64:4", bc.String())

	invalid := newTestConn(t, e, call, StringOptions{OptionBearerCapability: "1:99:64:4"})
	bc, ok = invalid.BearerCapability()
	require.True(t, ok)
	require.Equal(t, "0:8:1:2", bc.String())
	require.Equal(t, 1.0, testutil.ToFloat64(m.bearerInvalid.WithLabelValues("connection")))

	route := newTestConn(t, e, call, StringOptions{"OPAL-h323-bearer-capability": "0:0:64:3"})
	bc, _ = route.BearerCapability()
	require.Equal(t, "0:0:64:3", bc.String())

	// a later invalid value does not clear the current one
	route.ApplyStringOptions(StringOptions{OptionBearerCapability: "1:5:64"})
	bc, _ = route.BearerCapability()
	require.Equal(t, "0:0:64:3", bc.String())

	none := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, none, NewCall(""), StringOptions{OptionBearerCapability: "x"})
	_, ok = c.BearerCapability()
	require.False(t, ok)
}

func TestMediaFormatFiltering(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{AudioFormats: []string{"G.711-ALaw-64k", "G.711-uLaw-64k"}})
	c := newTestConn(t, e, NewCall(""), nil)

	all := c.MediaFormats()
	require.Equal(t, media.FormatList{media.G711ULaw, media.T38, media.RFC2833, media.G711ALaw}, all)
	require.Equal(t, all, media.Filter(all, c.AllowList()))

	local := c.LocalMediaFormats()
	require.Equal(t, all, local)

	require.Equal(t,
		media.FormatList{media.G711ALaw, media.G711ULaw, media.T38, media.RFC2833},
		c.AdjustMediaFormats(true, local),
	)
	require.Equal(t, all, c.AdjustMediaFormats(false, all))
}

func TestFaxFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := newTestEndpoint(t, EndpointConfig{}, WithMetrics(m))
	c := newTestConn(t, e, NewCall(""), nil)
	ctx := context.Background()

	require.NoError(t, c.SwitchFaxStreams(ctx, true))
	c.requireState(t, SwitchingToFax, ModeAudio)
	require.Equal(t, []bool{true}, c.stack.Switches())

	// peer rejects fax
	c.OnSwitchedFaxStreams(false)
	res := c.waitResult(t)
	require.Equal(t, SwitchResult{Requested: ModeFax, Actual: ModeAudio, Fallback: true}, res)

	require.Eventually(t, func() bool {
		return len(c.stack.Switches()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []bool{true, false}, c.stack.Switches())
	c.requireState(t, SwitchingToAudio, ModeAudio)
	require.False(t, c.AllowList().Contains(media.T38))
	require.False(t, c.MediaFormats().HasCategory(media.CategoryFax))
	require.False(t, c.LocalMediaFormats().Contains(media.T38))

	c.OnSwitchedFaxStreams(false)
	res = c.waitResult(t)
	require.Equal(t, SwitchResult{Requested: ModeAudio, Actual: ModeAudio}, res)
	c.requireState(t, SwitchIdle, ModeAudio)

	err := c.SwitchFaxStreams(ctx, true)
	require.ErrorIs(t, err, ErrMediaTypeUnsupported)
	require.Len(t, c.stack.Switches(), 2)

	require.Equal(t, 1.0, testutil.ToFloat64(m.faxFallbacks))
	require.Equal(t, 1.0, testutil.ToFloat64(m.faxSwitches.WithLabelValues("fax", resultFallback)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.faxSwitches.WithLabelValues("audio", resultSucceeded)))
}

func TestFaxFallbackSynchronousCompletion(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)
	c.stack.onSwitch = func(bool) {
		// the peer never accepts fax
		c.OnSwitchedFaxStreams(false)
	}

	require.NoError(t, c.SwitchFaxStreams(context.Background(), true))
	require.True(t, c.waitResult(t).Fallback)
	res := c.waitResult(t)
	require.Equal(t, ModeAudio, res.Requested)
	require.NoError(t, res.Err)
	c.requireState(t, SwitchIdle, ModeAudio)
	require.Equal(t, []bool{true, false}, c.stack.Switches())
}

func TestFaxSwitchUnsupported(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), StringOptions{OptionDisableT38: "true"})

	err := c.SwitchFaxStreams(context.Background(), true)
	require.ErrorIs(t, err, ErrMediaTypeUnsupported)
	require.Empty(t, c.stack.Switches())
	state, mode := c.FaxState()
	require.Equal(t, SwitchIdle, state)
	require.Equal(t, ModeAudio, mode)

	// no audio format offered by the stack
	c2 := newTestConn(t, e, NewCall(""), nil)
	c2.stack.all = media.FormatList{media.T38}
	err = c2.SwitchFaxStreams(context.Background(), false)
	require.ErrorIs(t, err, ErrMediaTypeUnsupported)
	require.Empty(t, c2.stack.Switches())
}

func TestFaxSwitchAudioMismatch(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)
	ctx := context.Background()

	require.NoError(t, c.SwitchFaxStreams(ctx, true))
	c.OnSwitchedFaxStreams(true)
	require.Equal(t, SwitchResult{Requested: ModeFax, Actual: ModeFax}, c.waitResult(t))
	c.requireState(t, SwitchIdle, ModeFax)

	require.NoError(t, c.SwitchFaxStreams(ctx, false))
	c.OnSwitchedFaxStreams(true)
	res := c.waitResult(t)
	require.ErrorIs(t, res.Err, ErrSwitchFailed)
	require.False(t, res.Fallback)
	require.Equal(t, ModeAudio, res.Requested)
	require.Equal(t, ModeFax, res.Actual)

	c.requireState(t, SwitchIdle, ModeFax)
	require.Equal(t, []bool{true, false}, c.stack.Switches(), "no automatic retry")
	require.True(t, c.AllowList().Contains(media.T38))
}

func TestFaxSwitchInProgress(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)
	ctx := context.Background()

	require.NoError(t, c.SwitchFaxStreams(ctx, true))
	require.ErrorIs(t, c.SwitchFaxStreams(ctx, false), ErrSwitchInProgress)
	require.ErrorIs(t, c.SwitchFaxStreams(ctx, true), ErrSwitchInProgress)
	require.Equal(t, []bool{true}, c.stack.Switches())
}

func TestFaxSwitchRefusedByStack(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)
	c.stack.refuse = true

	require.ErrorIs(t, c.SwitchFaxStreams(context.Background(), true), ErrSwitchRejected)
	state, _ := c.FaxState()
	require.Equal(t, SwitchIdle, state)
}

func TestFaxSwitchByRemote(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)

	c.OnSwitchedFaxStreams(true)
	require.Equal(t, SwitchResult{Requested: ModeFax, Actual: ModeFax, Remote: true}, c.waitResult(t))
	c.requireState(t, SwitchIdle, ModeFax)
	require.Empty(t, c.stack.Switches())
}

func TestConnectionClose(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := newTestEndpoint(t, EndpointConfig{}, WithMetrics(m))
	call := NewCall("")
	c := newTestConn(t, e, call, nil)
	require.Equal(t, 1.0, testutil.ToFloat64(m.connections))

	c.Close()
	c.Close()
	require.Equal(t, 0.0, testutil.ToFloat64(m.connections))
	require.Nil(t, call.Connection(0))
	require.ErrorIs(t, c.SwitchFaxStreams(context.Background(), true), ErrConnectionClosed)
	c.OnSwitchedFaxStreams(true)
	require.Empty(t, c.stack.Switches())
}

func TestSetUpConnectionCallerNumber(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})

	for _, c := range []struct {
		remote string
		exp    string
	}{
		{"5551234", "5551234"},
		{"", "gateway"},
		{"*", "gateway"},
	} {
		call := NewCall("")
		first := newTestConn(t, e, call, nil)
		first.SetRemotePartyNumber(c.remote)
		first.SetLocalPartyName("first")
		second := newTestConn(t, e, call, nil)
		second.SetLocalPartyName("gateway")

		first.SetUpConnection()
		require.Equal(t, "first", first.LocalPartyName())

		second.SetUpConnection()
		require.Equal(t, c.exp, second.LocalPartyName(), "remote %q", c.remote)
	}
}

func TestBearerCapabilityInMessages(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{BearerCapability: "0:8:1:2"})
	c := newTestConn(t, e, NewCall(""), nil)

	setup := q931.NewMessage(q931.MsgSetup, 1)
	c.OnSendSignalSetup(setup)
	data, ok := setup.IE(q931.IEBearerCapability)
	require.True(t, ok)
	require.Equal(t, []byte{0x88, 0x90, 0xa2}, data)

	connect := q931.NewMessage(q931.MsgConnect, 2)
	progress := q931.NewMessage(q931.MsgProgress, 2)
	c.ApplyStringOptions(StringOptions{OptionBearerCapability: "0:16:24:3"})
	c.OnAnswerCall("5551234", connect, progress)
	for _, msg := range []*q931.Message{connect, progress} {
		capability, rate, coding, layer1, err := msg.BearerCapabilities()
		require.NoError(t, err)
		require.Equal(t, []int{16, 24, 0, 3}, []int{capability, rate, coding, layer1}, msg.Type.String())
	}

	plain := newTestConn(t, newTestEndpoint(t, EndpointConfig{}), NewCall(""), nil)
	msg := q931.NewMessage(q931.MsgSetup, 3)
	plain.OnSendSignalSetup(msg)
	require.False(t, msg.HasIE(q931.IEBearerCapability))
}

func TestConcurrentNegotiationDuringFallback(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)

	var (
		wg       sync.WaitGroup
		fellBack atomic.Bool
		checked  atomic.Int64
	)
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				after := fellBack.Load()
				local := c.AdjustMediaFormats(true, c.LocalMediaFormats())
				all := c.MediaFormats()
				if !after {
					continue
				}
				if local.Contains(media.T38) || all.Contains(media.T38) {
					t.Errorf("T.38 offered after fallback: local=%s all=%s", local, all)
					return
				}
				checked.Add(1)
			}
		}()
	}

	require.True(t, c.LocalMediaFormats().Contains(media.T38))
	require.NoError(t, c.SwitchFaxStreams(context.Background(), true))
	c.OnSwitchedFaxStreams(false)
	require.True(t, c.waitResult(t).Fallback)
	fellBack.Store(true)

	require.Eventually(t, func() bool {
		return checked.Load() >= 100
	}, 2*time.Second, time.Millisecond)
	close(stop)
	wg.Wait()
}

func TestFaxSwitchCancelledContext(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.SwitchFaxStreams(ctx, true), context.Canceled)
	require.Empty(t, c.stack.Switches())
	state, mode := c.FaxState()
	require.Equal(t, SwitchIdle, state)
	require.Equal(t, ModeAudio, mode)

	require.NoError(t, c.SwitchFaxStreams(context.Background(), true))
	require.Equal(t, []bool{true}, c.stack.Switches())
}

func TestFaxSwitchCancelledWhileQueued(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)
	gate := make(chan struct{})
	c.stack.onSwitch = func(fax bool) {
		if !fax {
			<-gate
		}
	}

	require.NoError(t, c.SwitchFaxStreams(context.Background(), true))
	// fallback to audio blocks the controller in the stack
	c.OnSwitchedFaxStreams(false)
	require.Eventually(t, func() bool {
		return len(c.stack.Switches()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- c.SwitchFaxStreams(ctx, false)
	}()
	cancel()
	close(gate)

	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("switch request did not return")
	}
	require.Equal(t, []bool{true, false}, c.stack.Switches())
	c.requireState(t, SwitchingToAudio, ModeAudio)
}

func TestFaxSwitchRetryFromResultHandler(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	stack := newFakeStack()
	retries := make(chan error, 4)
	conn := e.NewConnection(NewCall(""), ConnectionParams{
		Stack: stack,
		OnFaxSwitched: func(c *Connection, res SwitchResult) {
			if errors.Is(res.Err, ErrSwitchFailed) {
				retries <- c.SwitchFaxStreams(context.Background(), res.Requested == ModeFax)
			}
		},
	})
	t.Cleanup(conn.Close)
	waitState := func(state SwitchState, mode Mode) {
		require.Eventually(t, func() bool {
			s, m := conn.FaxState()
			return s == state && m == mode
		}, 2*time.Second, 5*time.Millisecond)
	}
	ctx := context.Background()

	require.NoError(t, conn.SwitchFaxStreams(ctx, true))
	conn.OnSwitchedFaxStreams(true)
	waitState(SwitchIdle, ModeFax)

	require.NoError(t, conn.SwitchFaxStreams(ctx, false))
	conn.OnSwitchedFaxStreams(true)
	select {
	case err := <-retries:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("retry from the result handler did not return")
	}
	require.Equal(t, []bool{true, false, false}, stack.Switches())
	waitState(SwitchingToAudio, ModeFax)

	conn.OnSwitchedFaxStreams(false)
	waitState(SwitchIdle, ModeAudio)
}

func TestFaxStateConsistent(t *testing.T) {
	e := newTestEndpoint(t, EndpointConfig{})
	c := newTestConn(t, e, NewCall(""), nil)
	c.stack.onSwitch = func(fax bool) {
		c.OnSwitchedFaxStreams(fax)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			state, mode := c.FaxState()
			if (state == SwitchingToFax && mode != ModeAudio) || (state == SwitchingToAudio && mode != ModeFax) {
				t.Errorf("inconsistent fax state: %s with mode %s", state, mode)
				return
			}
		}
	}()

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		mode := modeOf(i%2 == 0)
		require.NoError(t, c.SwitchFaxStreams(ctx, mode == ModeFax))
		res := c.waitResult(t)
		require.NoError(t, res.Err)
		require.Equal(t, mode, res.Actual)
		c.requireState(t, SwitchIdle, mode)
	}
	close(stop)
	wg.Wait()
}

func TestStringOptions(t *testing.T) {
	opts := StringOptions{"disable-t38-mode": "", "OPAL-H323-Bearer-Capability": "0:0:1:2"}
	require.True(t, opts.Has(OptionDisableT38))
	val, ok := opts.Get(OptionBearerCapability)
	require.True(t, ok)
	require.Equal(t, "0:0:1:2", val)
	require.False(t, opts.Has("OPAL-"))

	both := StringOptions{
		"OPAL-H323-Bearer-Capability": "1:5:64:4",
		"h323-bearer-capability":      "0:8:1:2",
	}
	for i := 0; i < 20; i++ {
		val, ok = both.Get(OptionBearerCapability)
		require.True(t, ok)
		require.Equal(t, "0:8:1:2", val)
	}

	routed := StringOptions{"opal-disable-t38-mode": "1"}
	val, ok = routed.Get("OPAL-" + OptionDisableT38)
	require.True(t, ok)
	require.Equal(t, "1", val)
}
