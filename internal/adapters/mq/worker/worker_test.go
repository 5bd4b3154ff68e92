package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/padmixer/internal/adapters/mq/queue"
	worker "github.com/okian/padmixer/internal/adapters/mq/worker"
	"github.com/okian/padmixer/internal/domain/action"
	model "github.com/okian/padmixer/internal/domain/model"
	logging "github.com/okian/padmixer/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue() <-chan queue.Job { return mq.jobs }

type call struct {
	action action.Action
	value  float64
}

// gatedExecutor records calls and, when gated, blocks each call until released.
type gatedExecutor struct {
	mu      sync.Mutex
	calls   []call
	gate    chan struct{}
	entered chan struct{}
}

func newGatedExecutor(gated bool) *gatedExecutor {
	e := &gatedExecutor{entered: make(chan struct{}, 100)}
	if gated {
		e.gate = make(chan struct{})
	}
	return e
}

func (e *gatedExecutor) Execute(ctx context.Context, a action.Action, v float64) error {
	e.mu.Lock()
	e.calls = append(e.calls, call{action: a, value: v})
	e.mu.Unlock()
	e.entered <- struct{}{}
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-ctx.Done():
		}
	}
	return nil
}

func (e *gatedExecutor) release() { close(e.gate) }

func (e *gatedExecutor) snapshot() []call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]call(nil), e.calls...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func volume(seq uint64, target string, v float64) model.Job {
	a := action.SetVolume{Target: target}
	return model.Job{Seq: seq, Lane: action.LaneKey(a), Action: a, Value: v}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		exec := newGatedExecutor(false)

		convey.Convey("When jobs are queued and the queue closes", func() {
			w := worker.NewInMemoryWorker(q, exec, worker.WithName("test-worker"))
			q.jobs <- volume(1, "spotify", 0.1)
			q.jobs <- volume(2, "spotify", 0.2)
			close(q.jobs)

			w.Run(context.Background())

			convey.Convey("Then they run in order and the worker stops", func() {
				calls := exec.snapshot()
				convey.So(len(calls), convey.ShouldEqual, 2)
				convey.So(calls[0].value, convey.ShouldEqual, 0.1)
				convey.So(calls[1].value, convey.ShouldEqual, 0.2)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the resolver skips a job", func() {
			w := worker.NewInMemoryWorker(q, exec, worker.WithResolve(func(j model.Job) (model.Job, bool) {
				return j, j.Seq != 1
			}))
			q.jobs <- volume(1, "spotify", 0.1)
			q.jobs <- volume(2, "spotify", 0.2)
			close(q.jobs)
			w.Run(context.Background())

			convey.Convey("Then only the fresh job executes", func() {
				calls := exec.snapshot()
				convey.So(len(calls), convey.ShouldEqual, 1)
				convey.So(calls[0].value, convey.ShouldEqual, 0.2)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			w := worker.NewInMemoryWorker(q, exec)
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker stops", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestLanes(t *testing.T) {
	convey.Convey("Given lanes over a gated executor", t, func() {
		_ = logging.Init()
		ctx := context.Background()
		exec := newGatedExecutor(true)
		lanes := worker.NewLanes(exec, worker.WithQueueSize(8))

		convey.Convey("When submitting before Start", func() {
			convey.So(lanes.Submit(ctx, volume(1, "spotify", 0.5)), convey.ShouldBeFalse)
		})

		convey.Convey("When several updates for one knob pile up", func() {
			convey.So(lanes.Start(ctx), convey.ShouldBeNil)
			convey.So(lanes.Submit(ctx, volume(1, "spotify", 0.1)), convey.ShouldBeTrue)
			<-exec.entered
			convey.So(lanes.Submit(ctx, volume(2, "spotify", 0.2)), convey.ShouldBeTrue)
			convey.So(lanes.Submit(ctx, volume(3, "spotify", 0.3)), convey.ShouldBeTrue)
			convey.So(lanes.Depth(), convey.ShouldEqual, 1)
			exec.release()

			convey.Convey("Then only the first and newest are applied, in order", func() {
				convey.So(lanes.Shutdown(ctx), convey.ShouldBeNil)
				calls := exec.snapshot()
				convey.So(len(calls), convey.ShouldEqual, 2)
				convey.So(calls[0].value, convey.ShouldEqual, 0.1)
				convey.So(calls[1].value, convey.ShouldEqual, 0.3)
			})
		})

		convey.Convey("When one lane is blocked", func() {
			convey.So(lanes.Start(ctx), convey.ShouldBeNil)
			lanes.Submit(ctx, volume(1, "spotify", 0.1))
			<-exec.entered
			sw := action.SwitchOutputDevice{Alias: "Headphones"}
			lanes.Submit(ctx, model.Job{Seq: 2, Action: sw})

			convey.Convey("Then other lanes still run", func() {
				convey.So(eventually(func() bool { return len(exec.snapshot()) == 2 }), convey.ShouldBeTrue)
				convey.So(lanes.Keys(), convey.ShouldResemble, []string{"switch_device", "volume:spotify"})
				exec.release()
				convey.So(lanes.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a lane is full", func() {
			small := worker.NewLanes(exec, worker.WithQueueSize(1))
			convey.So(small.Start(ctx), convey.ShouldBeNil)
			small.Submit(ctx, model.Job{Seq: 1, Action: action.LaunchProcess{Path: "a"}})
			<-exec.entered
			convey.So(small.Submit(ctx, model.Job{Seq: 2, Action: action.LaunchProcess{Path: "b"}}), convey.ShouldBeTrue)

			convey.Convey("Then further jobs are rejected", func() {
				convey.So(small.Submit(ctx, model.Job{Seq: 3, Action: action.LaunchProcess{Path: "c"}}), convey.ShouldBeFalse)
				exec.release()
				convey.So(small.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(len(exec.snapshot()), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a knob sweeps past a small lane's capacity", func() {
			small := worker.NewLanes(exec, worker.WithQueueSize(2))
			convey.So(small.Start(ctx), convey.ShouldBeNil)
			convey.So(small.Submit(ctx, volume(1, "spotify", 0.1)), convey.ShouldBeTrue)
			<-exec.entered
			accepted := []bool{
				small.Submit(ctx, volume(2, "spotify", 0.2)),
				small.Submit(ctx, volume(3, "spotify", 0.3)),
				small.Submit(ctx, volume(4, "spotify", 0.9)),
			}
			exec.release()

			convey.Convey("Then the final value is still applied last", func() {
				convey.So(accepted, convey.ShouldResemble, []bool{true, true, true})
				convey.So(small.Shutdown(ctx), convey.ShouldBeNil)
				calls := exec.snapshot()
				convey.So(len(calls), convey.ShouldEqual, 2)
				convey.So(calls[0].value, convey.ShouldEqual, 0.1)
				convey.So(calls[len(calls)-1].value, convey.ShouldEqual, 0.9)
			})
		})

		convey.Convey("When shut down twice", func() {
			convey.So(lanes.Start(ctx), convey.ShouldBeNil)
			convey.So(lanes.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(lanes.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(lanes.Start(ctx), convey.ShouldEqual, worker.ErrLanesClosed)
			convey.So(lanes.Submit(ctx, volume(1, "spotify", 0.5)), convey.ShouldBeFalse)
		})
	})
}
