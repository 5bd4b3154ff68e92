package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	service "github.com/okian/padmixer/internal/app"
	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeMixer struct {
	mu        sync.Mutex
	sessions  []model.Session
	enumCalls int
	calls     []string
	volumes   map[string]float64
}

func (m *fakeMixer) Sessions(context.Context) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enumCalls++
	return m.sessions, nil
}

func (m *fakeMixer) OutputDevices(context.Context) ([]model.Device, error) {
	return []model.Device{{Name: "Speakers (Realtek Audio)", ID: "spk"}}, nil
}

func (m *fakeMixer) SetDefaultOutput(_ context.Context, id string) error {
	m.record("default:" + id)
	return nil
}

func (m *fakeMixer) SetSessionVolume(_ context.Context, handle string, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "session:"+handle)
	if m.volumes == nil {
		m.volumes = make(map[string]float64)
	}
	m.volumes[handle] = v
	return nil
}

func (m *fakeMixer) SetMasterVolume(_ context.Context, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "master")
	if m.volumes == nil {
		m.volumes = make(map[string]float64)
	}
	m.volumes["master"] = v
	return nil
}

func (m *fakeMixer) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *fakeMixer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *fakeMixer) volume(handle string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.volumes[handle]
	return v, ok
}

func (m *fakeMixer) enumerations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enumCalls
}

type fakeKeys struct {
	mu   sync.Mutex
	sent []action.TransportKey
}

func (k *fakeKeys) Send(_ context.Context, key action.TransportKey) error {
	k.mu.Lock()
	k.sent = append(k.sent, key)
	k.mu.Unlock()
	return nil
}

func knob(id, value uint8) model.MidiEvent {
	return model.MidiEvent{ID: "cc", Kind: model.ControlChange, Identifier: id, Value: value}
}

func pad(id uint8) model.MidiEvent {
	return model.MidiEvent{ID: "pad", Kind: model.NoteOn, Identifier: id, Value: 100}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New(&fakeMixer{}, nil)

		Convey("Then it is idle with the default bindings", func() {
			So(svc, ShouldNotBeNil)
			So(svc.State(), ShouldEqual, service.StateIdle)
			So(svc.Bindings(), ShouldHaveLength, mapping.Default().Len())
			So(svc.Targets(), ShouldBeNil)
		})
	})
}

func TestService_Inline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started inline service with spotify playing", t, func() {
		mixer := &fakeMixer{sessions: []model.Session{{Name: "Spotify.exe", Handle: "7"}}}
		keys := &fakeKeys{}
		svc := service.New(mixer, mapping.Default(),
			service.WithInlineExecution(true),
			service.WithRefreshMode(service.RefreshEvent),
			service.WithKeys(keys),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When an unmapped note arrives", func() {
			handled := svc.HandleEvent(ctx, pad(99))

			Convey("Then nothing is executed", func() {
				So(handled, ShouldBeFalse)
				So(mixer.callCount(), ShouldEqual, 0)
				So(keys.sent, ShouldBeEmpty)
				So(svc.GetStats()["eventsUnmapped"], ShouldEqual, uint64(1))
			})
		})

		Convey("When knob 1 is turned fully up", func() {
			So(svc.HandleEvent(ctx, knob(1, 127)), ShouldBeTrue)

			Convey("Then the spotify session is set to exactly 1.0", func() {
				v, ok := mixer.volume("7")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
			})
		})

		Convey("When a knob is bound to an unresolved target", func() {
			So(svc.HandleEvent(ctx, knob(2, 64)), ShouldBeTrue)

			Convey("Then no platform call is made", func() {
				So(mixer.callCount(), ShouldEqual, 0)
			})
		})

		Convey("When the master knob is turned to zero", func() {
			svc.HandleEvent(ctx, knob(4, 0))

			Convey("Then master volume is exactly 0.0", func() {
				v, ok := mixer.volume("master")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.0)
			})
		})

		Convey("When the play/pause pad is pressed", func() {
			svc.HandleEvent(ctx, pad(37))

			Convey("Then the media key is sent", func() {
				So(keys.sent, ShouldResemble, []action.TransportKey{action.PlayPause})
			})
		})

		Convey("When events arrive in event refresh mode", func() {
			before := mixer.enumerations()
			svc.HandleEvent(ctx, pad(99))
			svc.HandleEvent(ctx, pad(37))

			Convey("Then only mapped events trigger a refresh", func() {
				So(mixer.enumerations()-before, ShouldEqual, 1)
			})
		})

		Convey("Then the started service reports its targets", func() {
			var spotify bool
			for _, st := range svc.Targets() {
				if st.Target == "spotify" {
					spotify = st.Resolved
				}
			}
			So(spotify, ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldBeTrue)
		})
	})
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that has not been started", t, func() {
		svc := service.New(&fakeMixer{}, nil)

		Convey("Then Run refuses to dispatch", func() {
			So(svc.Run(ctx, make(chan model.MidiEvent)), ShouldEqual, service.ErrNotStarted)
		})
	})

	Convey("Given a started service with lanes", t, func() {
		mixer := &fakeMixer{sessions: []model.Session{{Name: "spotify", Handle: "7"}}}
		svc := service.New(mixer, mapping.Default(),
			service.WithRefreshInterval(time.Hour),
			service.WithLaneQueueSize(256),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When a burst of knob values is followed by input closure", func() {
			events := make(chan model.MidiEvent, 128)
			for v := uint8(0); v <= 127; v++ {
				events <- knob(1, v)
			}
			close(events)

			err := svc.Run(ctx, events)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then the loop terminates cleanly", func() {
				So(err, ShouldBeNil)
				So(svc.State(), ShouldEqual, service.StateTerminated)
			})

			Convey("Then the last value wins", func() {
				v, ok := mixer.volume("7")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
			})

			Convey("Then a stopped service refuses to run again", func() {
				So(svc.Run(ctx, events), ShouldEqual, service.ErrNotStarted)
			})
		})

		Convey("When the context is canceled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- svc.Run(runCtx, make(chan model.MidiEvent)) }()
			cancel()

			Convey("Then a concurrent Run is refused while the first is running", func() {
				for i := 0; i < 200 && svc.State() == service.StateIdle; i++ {
					time.Sleep(5 * time.Millisecond)
				}
				if svc.State() == service.StateRunning {
					So(svc.Run(runCtx, make(chan model.MidiEvent)), ShouldEqual, service.ErrAlreadyRunning)
				}
				<-done
				So(svc.Stop(ctx), ShouldBeNil)
			})

			Convey("Then Run returns the context error", func() {
				select {
				case err := <-done:
					So(err, ShouldEqual, context.Canceled)
				case <-time.After(2 * time.Second):
					So("run did not return", ShouldBeEmpty)
				}
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Degraded(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without an audio backend", t, func() {
		keys := &fakeKeys{}
		svc := service.New(nil, mapping.Default(),
			service.WithInlineExecution(true),
			service.WithKeys(keys),
			service.WithRefreshInterval(time.Hour),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then volume events are absorbed and transport still works", func() {
			So(svc.HandleEvent(ctx, knob(4, 100)), ShouldBeTrue)
			So(svc.HandleEvent(ctx, pad(38)), ShouldBeTrue)
			So(keys.sent, ShouldResemble, []action.TransportKey{action.Next})
			So(svc.GetStats()["backendAvailable"], ShouldBeFalse)
		})

		Convey("Then master is not listed as resolved", func() {
			for _, st := range svc.Targets() {
				So(st.Resolved, ShouldBeFalse)
			}
		})
	})
}
