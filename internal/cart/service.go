package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
)

type ServiceOptions struct {
	Policy Policy
	// Repository is required for PolicyPersisted and ignored otherwise.
	Repository Repository
	// Notifier is called with the cart lock held and must not call back
	// into the Service.
	Notifier   notify.Notifier
	Logger     *zap.Logger
}

// Service is the cart store shared by every presentation adapter. All
// mutations are serialized, which gives the same total order a single page
// event loop would.
type Service struct {
	mu       sync.Mutex
	cart     *Cart
	policy   Policy
	repo     Repository
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Policy == "" {
		opts.Policy = PolicySession
	}
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}
	if opts.Policy == PolicyPersisted && opts.Repository == nil {
		return nil, errors.New("persisted cart policy requires a repository")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		cart:     New(),
		policy:   opts.Policy,
		repo:     opts.Repository,
		notifier: opts.Notifier,
		logger:   opts.Logger.Named("cart").With(zap.String("policy", string(opts.Policy))),
	}, nil
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Open hydrates a persisted cart. A stored value that cannot be read or
// decoded is replaced by an empty cart; that is the recovery policy, not an
// error.
func (s *Service) Open(ctx context.Context) error {
	if s.policy != PolicyPersisted {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("stored cart unreadable, starting empty", zap.Error(err))
		s.cart.Clear()
		return nil
	}
	s.cart.Replace(lines)
	s.logger.Info("cart hydrated",
		zap.Int("lines", s.cart.Len()),
		zap.Int("items", s.cart.TotalItemCount()))
	return nil
}

// AddItem parses priceText and merges the package into the cart. A malformed
// price refuses the add and shows a warning instead.
func (s *Service) AddItem(ctx context.Context, title, priceText, image string) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.cart.AddText(title, priceText, image)
	if err != nil {
		s.logger.Info("add refused", zap.String("title", title), zap.String("price", priceText), zap.Error(err))
		s.notify(ctx, notify.SeverityWarning, refusalMessage(title, err))
		return AddResult{}, err
	}
	s.persistLocked(ctx)
	s.notify(ctx, notify.SeveritySuccess, fmt.Sprintf("%s added to cart!", res.Line.Title))
	return res, nil
}

// RemoveLine drops the whole line at index. An out-of-range index can only
// come from a stale view, so it is logged and not shown to the user.
func (s *Service) RemoveLine(ctx context.Context, index int) (RemoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.cart.Remove(index)
	if err != nil {
		s.logger.Warn("remove ignored", zap.Int("index", index), zap.Error(err))
		return RemoveResult{}, err
	}
	s.persistLocked(ctx)
	s.notify(ctx, notify.SeverityInfo, fmt.Sprintf("%s removed from cart", res.Line.Title))
	return res, nil
}

func (s *Service) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItemCount()
}

func (s *Service) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalAmount()
}

func (s *Service) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line{}, s.cart.Lines...)
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

// Clear empties the cart unconditionally.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return s.clearStoredLocked(ctx)
}

// TakeForCheckout hands over the current cart and starts an empty one with a
// new id in a single step. Adds that land afterwards go to the new cart.
func (s *Service) TakeForCheckout(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.cart.Snapshot()
	s.cart = New()
	return snap, s.clearStoredLocked(ctx)
}

func (s *Service) clearStoredLocked(ctx context.Context) error {
	if s.policy != PolicyPersisted {
		return nil
	}
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error("clear stored cart", zap.Error(err))
		return err
	}
	return nil
}

// persistLocked writes the cart through in persisted mode. The in-memory
// state stays authoritative when the write fails.
func (s *Service) persistLocked(ctx context.Context) {
	if s.policy != PolicyPersisted {
		return
	}
	if err := s.repo.Save(ctx, s.cart.Lines); err != nil {
		s.logger.Error("save cart", zap.Error(err))
		s.notify(ctx, notify.SeverityError, "Your cart could not be saved")
	}
}

func (s *Service) notify(ctx context.Context, severity notify.Severity, message string) {
	s.notifier.Notify(ctx, notify.NewNotification(severity, message))
}

func refusalMessage(title string, err error) string {
	var perr *PriceParseError
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return "Could not add package: title is required"
	case errors.As(err, &perr):
		return fmt.Sprintf("Could not add %s: price %q is not valid", title, perr.Text)
	default:
		return fmt.Sprintf("Could not add %s", title)
	}
}
