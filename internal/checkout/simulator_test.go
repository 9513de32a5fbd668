package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, string(n.Severity)+": "+n.Message)
	}
	return out
}

type publisherMock struct {
	mu   sync.Mutex
	err  error
	sent []cart.Snapshot
}

func (p *publisherMock) PublishCartCheckedOut(_ context.Context, snap cart.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, snap)
	return p.err
}

func newCart(t *testing.T, titles ...string) *cart.Service {
	t.Helper()
	svc, err := cart.NewService(cart.ServiceOptions{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	for _, title := range titles {
		if _, err := svc.AddItem(context.Background(), title, "$100.00", ""); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}
	return svc
}

func waitDone(t *testing.T, s *Simulator) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("checkout did not complete")
	}
}

func TestStartOnEmptyCartWarns(t *testing.T) {
	rec := &recordingNotifier{}
	pub := &publisherMock{}
	s := NewSimulator(newCart(t), Options{Delay: time.Millisecond, Notifier: rec, Publisher: pub})

	if err := s.Start(context.Background()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if s.Processing() {
		t.Fatalf("empty cart must not start processing")
	}

	msgs := rec.messages()
	if len(msgs) != 1 || msgs[0] != "warning: "+MsgEmptyCart {
		t.Fatalf("unexpected notifications %v", msgs)
	}
	if len(pub.sent) != 0 {
		t.Fatalf("nothing should be published")
	}
}

func TestCheckoutCompletesAndEmptiesCart(t *testing.T) {
	rec := &recordingNotifier{}
	pub := &publisherMock{}
	c := newCart(t, "Wedding Package", "Wedding Package", "Birthday Bash")
	cartID := c.Snapshot().CartID

	s := NewSimulator(c, Options{Delay: 20 * time.Millisecond, Notifier: rec, Publisher: pub})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Processing() {
		t.Fatalf("expected processing right after start")
	}
	if c.TotalItemCount() != 3 {
		t.Fatalf("cart must stay intact until the delay elapses")
	}

	waitDone(t, s)

	if s.Processing() {
		t.Fatalf("expected processing to be cleared")
	}
	snap := c.Snapshot()
	if !snap.Empty() || snap.CartID == cartID {
		t.Fatalf("expected a fresh empty cart, got %+v", snap)
	}

	want := []string{"info: " + MsgProceeding, "success: " + MsgPlaced}
	got := rec.messages()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if len(pub.sent) != 1 {
		t.Fatalf("expected one published checkout, got %d", len(pub.sent))
	}
	if pub.sent[0].CartID != cartID || pub.sent[0].ItemCount != 3 {
		t.Fatalf("unexpected published snapshot %+v", pub.sent[0])
	}
}

type addingPublisher struct {
	svc  *cart.Service
	sent []cart.Snapshot
}

func (p *addingPublisher) PublishCartCheckedOut(ctx context.Context, snap cart.Snapshot) error {
	p.sent = append(p.sent, snap)
	_, err := p.svc.AddItem(ctx, "Late Add", "$5.00", "")
	return err
}

func TestAddDuringPublishLandsInNextCart(t *testing.T) {
	c := newCart(t, "Wedding Package")
	pub := &addingPublisher{svc: c}
	s := NewSimulator(c, Options{Delay: time.Millisecond, Publisher: pub})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, s)

	if len(pub.sent) != 1 {
		t.Fatalf("expected one published checkout, got %d", len(pub.sent))
	}
	if lines := pub.sent[0].Lines; len(lines) != 1 || lines[0].Title != "Wedding Package" {
		t.Fatalf("unexpected published lines %+v", lines)
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Title != "Late Add" {
		t.Fatalf("expected the late add to be kept, got %+v", lines)
	}
}

func TestStartWhileProcessingIsRefused(t *testing.T) {
	s := NewSimulator(newCart(t, "Baby Shower"), Options{Delay: 50 * time.Millisecond})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrInProgress) {
		t.Fatalf("expected ErrInProgress, got %v", err)
	}
	waitDone(t, s)
}

func TestCheckoutIgnoresCallerCancellation(t *testing.T) {
	c := newCart(t, "Corporate Event")
	s := NewSimulator(c, Options{Delay: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()

	waitDone(t, s)
	if c.TotalItemCount() != 0 {
		t.Fatalf("expected checkout to complete after cancellation")
	}
}

func TestPublishFailureStillCompletes(t *testing.T) {
	rec := &recordingNotifier{}
	pub := &publisherMock{err: errors.New("broker down")}
	c := newCart(t, "Anniversary Dinner")
	s := NewSimulator(c, Options{Delay: time.Millisecond, Notifier: rec, Publisher: pub})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, s)

	if c.TotalItemCount() != 0 {
		t.Fatalf("expected cart to be emptied")
	}
	msgs := rec.messages()
	if msgs[len(msgs)-1] != "success: "+MsgPlaced {
		t.Fatalf("expected success notification, got %v", msgs)
	}
}

func TestDoneIsClosedBeforeAnyCheckout(t *testing.T) {
	s := NewSimulator(newCart(t), Options{})
	select {
	case <-s.Done():
	default:
		t.Fatalf("expected Done to be closed for an idle simulator")
	}
}
