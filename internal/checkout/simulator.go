// Package checkout simulates the pretend purchase flow: a fixed delay that
// always succeeds and leaves the cart empty.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
)

const DefaultDelay = 2 * time.Second

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrInProgress = errors.New("checkout already in progress")
)

const (
	MsgEmptyCart  = "Your cart is empty!"
	MsgProceeding = "Proceeding to checkout..."
	MsgPlaced     = "Order placed successfully!"
)

type Cart interface {
	Snapshot() cart.Snapshot
	TakeForCheckout(ctx context.Context) (cart.Snapshot, error)
}

type CartEventsPublisher interface {
	PublishCartCheckedOut(ctx context.Context, snap cart.Snapshot) error
}

type Options struct {
	Delay     time.Duration
	Notifier  notify.Notifier
	Publisher CartEventsPublisher
	Logger    *zap.Logger
}

// Simulator runs at most one checkout at a time. Once started, a checkout is
// not cancellable: the completion always fires after the delay.
type Simulator struct {
	cart      Cart
	delay     time.Duration
	notifier  notify.Notifier
	publisher CartEventsPublisher
	logger    *zap.Logger

	mu         sync.Mutex
	processing bool
	done       chan struct{}
}

func NewSimulator(c Cart, opts Options) *Simulator {
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	done := make(chan struct{})
	close(done)

	return &Simulator{
		cart:      c,
		delay:     opts.Delay,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		logger:    opts.Logger.Named("checkout"),
		done:      done,
	}
}

// Start begins a checkout. An empty cart produces a warning and no state
// change; a checkout already processing is refused.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return ErrInProgress
	}

	if s.cart.Snapshot().Empty() {
		s.mu.Unlock()
		s.notify(ctx, notify.SeverityWarning, MsgEmptyCart)
		return ErrEmptyCart
	}

	s.processing = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.notify(ctx, notify.SeverityInfo, MsgProceeding)
	s.logger.Info("checkout started", zap.Duration("delay", s.delay))

	completeCtx := context.WithoutCancel(ctx)
	time.AfterFunc(s.delay, func() { s.complete(completeCtx, done) })
	return nil
}

// Processing reports whether the checkout control is currently disabled.
func (s *Simulator) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Done returns a channel closed when the current (or last) checkout completes.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Simulator) complete(ctx context.Context, done chan struct{}) {
	snap, err := s.cart.TakeForCheckout(ctx)
	if err != nil {
		s.logger.Error("clear stored cart after checkout", zap.String("cart_id", snap.CartID), zap.Error(err))
	}

	if s.publisher != nil && !snap.Empty() {
		if err := s.publisher.PublishCartCheckedOut(ctx, snap); err != nil {
			s.logger.Error("publish cart checked out", zap.String("cart_id", snap.CartID), zap.Error(err))
		}
	}

	s.logger.Info("checkout completed",
		zap.String("cart_id", snap.CartID),
		zap.Int("items", snap.ItemCount),
		zap.String("total", snap.Total.StringFixed(2)))

	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()

	s.notify(ctx, notify.SeveritySuccess, MsgPlaced)
	close(done)
}

func (s *Simulator) notify(ctx context.Context, severity notify.Severity, message string) {
	s.notifier.Notify(ctx, notify.NewNotification(severity, message))
}
