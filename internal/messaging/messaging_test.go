package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-atlas/internal/commands"
	"github.com/pixil98/go-atlas/internal/playback"
	"github.com/pixil98/go-atlas/internal/view"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{subject: subject, data: data})
	return nil
}

func (p *fakePublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.msgs {
		out = append(out, m.subject)
	}
	return out
}

func testFrame(seq uint64, year int) *view.Frame {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{2, 46})
	f.Properties["NAME_ENGL"] = "France"
	f.Properties["Anxiety"] = 40.0
	fc.Append(f)

	return &view.Frame{
		Seq:      seq,
		Year:     year,
		Data:     fc,
		Playback: playback.Snapshot{Year: year, Years: []int{1990, 1991}},
		Extruded: []string{},
	}
}

func TestFramePublisher_Update(t *testing.T) {
	tests := map[string]struct {
		years       []int
		expSubjects []string
	}{
		"first frame sends data": {
			years:       []int{1990},
			expSubjects: []string{SubjectFrame, SubjectData},
		},
		"same year skips data": {
			years:       []int{1990, 1990},
			expSubjects: []string{SubjectFrame, SubjectData, SubjectFrame},
		},
		"year change sends data": {
			years:       []int{1990, 1991},
			expSubjects: []string{SubjectFrame, SubjectData, SubjectFrame, SubjectData},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pub := &fakePublisher{}
			p := NewFramePublisher(pub)

			for i, y := range tt.years {
				if err := p.Update(context.Background(), testFrame(uint64(i+1), y)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			got := pub.subjects()
			testutil.AssertEqual(t, "count", len(got), len(tt.expSubjects))
			for i := range tt.expSubjects {
				if i < len(got) {
					testutil.AssertEqual(t, "subject", got[i], tt.expSubjects[i])
				}
			}
		})
	}
}

func TestFramePublisher_Payload(t *testing.T) {
	pub := &fakePublisher{}
	p := NewFramePublisher(pub)

	if err := p.Update(context.Background(), testFrame(7, 1991)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var frame map[string]any
	if err := json.Unmarshal(pub.msgs[0].data, &frame); err != nil {
		t.Fatalf("decoding frame: %v", err)
	}
	testutil.AssertEqual(t, "year", frame["year"], any(1991.0))
	if _, ok := frame["Data"]; ok {
		t.Errorf("frame should not embed the feature collection")
	}

	fc, err := geojson.UnmarshalFeatureCollection(pub.msgs[1].data)
	if err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	testutil.AssertEqual(t, "features", len(fc.Features), 1)
}

func TestFramePublisher_Errors(t *testing.T) {
	tests := map[string]struct {
		err    error
		expErr string
	}{
		"not started is dropped": {
			err: ErrNotStarted,
		},
		"other errors surface": {
			err:    errors.New("connection closed"),
			expErr: "publishing frame 1: connection closed",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewFramePublisher(&fakePublisher{err: tt.err})
			err := p.Update(context.Background(), testFrame(1, 1990))
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

type fakeExecutor struct {
	out string
	err error
}

func (e fakeExecutor) Exec(context.Context, string) (string, error) {
	return e.out, e.err
}

func TestControlService_Handle(t *testing.T) {
	tests := map[string]struct {
		exec fakeExecutor
		exp  ControlReply
	}{
		"output": {
			exec: fakeExecutor{out: "Paused at 1990."},
			exp:  ControlReply{Output: "Paused at 1990."},
		},
		"quit is just output": {
			exec: fakeExecutor{out: "Goodbye.", err: commands.ErrQuit},
			exp:  ControlReply{Output: "Goodbye."},
		},
		"user error": {
			exec: fakeExecutor{err: commands.NewUserError("Speed must be between 1 and 10.")},
			exp:  ControlReply{Error: "Speed must be between 1 and 10."},
		},
		"system error": {
			exec: fakeExecutor{err: errors.New("event loop stopped")},
			exp:  ControlReply{Error: "command failed: event loop stopped"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewControlService(nil, tt.exec)

			var got ControlReply
			if err := json.Unmarshal(s.handle(context.Background(), []byte("speed 5")), &got); err != nil {
				t.Fatalf("decoding reply: %v", err)
			}
			testutil.AssertEqual(t, "reply", got, tt.exp)
		})
	}
}

func TestWithControlTimeout(t *testing.T) {
	tests := map[string]struct {
		timeout time.Duration
		exp     time.Duration
	}{
		"custom":   {timeout: time.Second, exp: time.Second},
		"zero":     {timeout: 0, exp: DefaultControlTimeout},
		"negative": {timeout: -time.Second, exp: DefaultControlTimeout},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewControlService(nil, fakeExecutor{}, WithControlTimeout(tt.timeout))
			testutil.AssertEqual(t, "timeout", s.timeout, tt.exp)
		})
	}
}

func TestNatsServer_Control(t *testing.T) {
	srv, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	_, err = srv.Subscribe(SubjectControl, func([]byte) []byte { return nil })
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted before start, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = srv.Start(ctx)
	}()
	svc := NewControlService(srv, fakeExecutor{out: "3 years loaded: 1990, 1991, 1992"})
	go func() {
		defer wg.Done()
		_ = svc.Start(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	select {
	case <-srv.Ready():
	case <-time.After(10 * time.Second):
		t.Fatal("server never became ready")
	}

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer nc.Close()

	// The control subscription is made asynchronously after Ready.
	var msg *nats.Msg
	deadline := time.Now().Add(5 * time.Second)
	for {
		msg, err = nc.Request(SubjectControl, []byte("years"), 200*time.Millisecond)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	var reply ControlReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	testutil.AssertEqual(t, "output", reply.Output, "3 years loaded: 1990, 1991, 1992")
}
