package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/repository/memory"
	"github.com/fluxorio/todos/pkg/todo"
	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func runTestNATSServer(t *testing.T) *natssrv.Server {
	t.Helper()

	s, err := natssrv.NewServer(&natssrv.Options{Port: -1})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(s.Shutdown)
	return s
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type countingObserver struct {
	ok, failed int
}

func (o *countingObserver) ObservePublish(_ string, err error) {
	if err != nil {
		o.failed++
		return
	}
	o.ok++
}

func TestType_Suffix(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Created, "created"},
		{Updated, "updated"},
		{Deleted, "deleted"},
		{Type("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := tt.typ.Suffix(); got != tt.want {
			t.Errorf("%s.Suffix() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestRepository_PublishesAfterMutations(t *testing.T) {
	ctx := core.WithRequestID(context.Background(), "req-1")
	pub := &recordingPublisher{}
	obs := &countingObserver{}
	repo := NewRepository(memory.New(), pub, WithLogger(core.DiscardLogger()), WithObserver(obs))

	item := todo.New("Buy milk", nil)
	if _, err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := repo.GetByID(ctx, item.ID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if _, err := repo.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	item.Completed = true
	if _, err := repo.Update(ctx, item); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []Type{Created, Updated, Deleted}
	if len(pub.events) != len(want) {
		t.Fatalf("published %d events, want %d", len(pub.events), len(want))
	}
	for i, typ := range want {
		ev := pub.events[i]
		if ev.Type != typ || ev.ID != item.ID {
			t.Errorf("event[%d] = %s %s, want %s %s", i, ev.Type, ev.ID, typ, item.ID)
		}
		if ev.RequestID != "req-1" {
			t.Errorf("event[%d].RequestID = %q, want req-1", i, ev.RequestID)
		}
	}
	if pub.events[1].Todo == nil || !pub.events[1].Todo.Completed {
		t.Errorf("updated event todo = %+v, want completed snapshot", pub.events[1].Todo)
	}
	if pub.events[2].Todo != nil {
		t.Error("deleted event carries a todo")
	}
	if obs.ok != 3 || obs.failed != 0 {
		t.Errorf("observer ok=%d failed=%d, want 3/0", obs.ok, obs.failed)
	}
}

func TestRepository_FailedMutationPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	repo := NewRepository(memory.New(), pub, WithLogger(core.DiscardLogger()))
	ctx := context.Background()

	if _, err := repo.Update(ctx, todo.New("ghost", nil)); !todo.IsNotFound(err) {
		t.Fatalf("Update() error = %v, want not found", err)
	}
	if err := repo.Delete(ctx, "ghost"); !todo.IsNotFound(err) {
		t.Fatalf("Delete() error = %v, want not found", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events, want 0", len(pub.events))
	}
}

func TestRepository_PublishErrorIsNotReturned(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	obs := &countingObserver{}
	repo := NewRepository(memory.New(), pub, WithLogger(core.DiscardLogger()), WithObserver(obs))

	created, err := repo.Create(context.Background(), todo.New("still saved", nil))
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
	if _, found, _ := repo.GetByID(context.Background(), created.ID); !found {
		t.Error("todo not stored after publish failure")
	}
	if obs.failed != 1 {
		t.Errorf("observer failed = %d, want 1", obs.failed)
	}
}

func TestNATSPublisher(t *testing.T) {
	s := runTestNATSServer(t)

	sub, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(sub.Close)

	msgs, err := sub.SubscribeSync("test.todos.>")
	if err != nil {
		t.Fatalf("SubscribeSync: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	pub, err := NewNATSPublisher(NATSConfig{URL: s.ClientURL(), SubjectPrefix: "test.todos"})
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}

	repo := NewRepository(memory.New(), pub, WithLogger(core.DiscardLogger()))
	ctx := core.WithRequestID(context.Background(), "req-42")
	item := todo.New("Buy milk", todo.StringPtr("2 liters"))
	if _, err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	tests := []struct {
		subject string
		typ     Type
		hasTodo bool
	}{
		{"test.todos.created", Created, true},
		{"test.todos.deleted", Deleted, false},
	}
	for _, tt := range tests {
		msg, err := msgs.NextMsg(2 * time.Second)
		if err != nil {
			t.Fatalf("NextMsg(%s): %v", tt.subject, err)
		}
		if msg.Subject != tt.subject {
			t.Errorf("Subject = %q, want %q", msg.Subject, tt.subject)
		}
		if got := msg.Header.Get(core.RequestIDHeader); got != "req-42" {
			t.Errorf("request id header = %q, want req-42", got)
		}

		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if ev.Type != tt.typ || ev.ID != item.ID {
			t.Errorf("event = %s %s, want %s %s", ev.Type, ev.ID, tt.typ, item.ID)
		}
		if (ev.Todo != nil) != tt.hasTodo {
			t.Errorf("event todo present = %v, want %v", ev.Todo != nil, tt.hasTodo)
		}
		if tt.hasTodo && !ev.Todo.Equal(item) {
			t.Errorf("event todo = %+v, want %+v", ev.Todo, item)
		}
	}
}

func TestNATSPublisher_ConnectFailure(t *testing.T) {
	if _, err := NewNATSPublisher(NATSConfig{URL: "nats://127.0.0.1:1"}); err == nil {
		t.Fatal("NewNATSPublisher() error = nil, want connection error")
	}
}

func TestNATSPublisher_DefaultPrefix(t *testing.T) {
	s := runTestNATSServer(t)
	pub, err := NewNATSPublisher(NATSConfig{URL: s.ClientURL()})
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	if got := pub.Subject(Updated); got != "todos.updated" {
		t.Errorf("Subject(Updated) = %q, want todos.updated", got)
	}
}
