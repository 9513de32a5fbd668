package cart_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage/memory"
)

type cartTestContext struct {
	kv     *memory.Store
	policy cart.Policy
	svc    *cart.Service
	last   *notify.Notification
	err    error
}

func (c *cartTestContext) Notify(_ context.Context, n notify.Notification) {
	c.last = &n
}

func (c *cartTestContext) reset() {
	c.kv = memory.New()
	c.policy = cart.PolicySession
	c.svc = nil
	c.last = nil
	c.err = nil
}

func (c *cartTestContext) open() error {
	var repo cart.Repository
	if c.policy == cart.PolicyPersisted {
		repo = cart.NewKVRepository(c.kv, cart.DefaultStorageKey)
	}
	svc, err := cart.NewService(cart.ServiceOptions{
		Policy:     c.policy,
		Repository: repo,
		Notifier:   c,
	})
	if err != nil {
		return err
	}
	c.svc = svc
	return svc.Open(context.Background())
}

func (c *cartTestContext) anEmptyCart(policy string) error {
	c.policy = cart.Policy(policy)
	return c.open()
}

func (c *cartTestContext) aPersistedCartWhoseStoredValueIs(raw string) error {
	if err := c.kv.Put(context.Background(), cart.DefaultStorageKey, []byte(raw)); err != nil {
		return err
	}
	c.policy = cart.PolicyPersisted
	return c.open()
}

func (c *cartTestContext) iAddPriced(title, priceText string) error {
	_, c.err = c.svc.AddItem(context.Background(), title, priceText, "")
	return nil
}

func (c *cartTestContext) iAddPricedTimes(title, priceText string, times int) error {
	for i := 0; i < times; i++ {
		if _, err := c.svc.AddItem(context.Background(), title, priceText, ""); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) iRemoveLine(index int) error {
	_, c.err = c.svc.RemoveLine(context.Background(), index)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	return c.svc.Clear(context.Background())
}

func (c *cartTestContext) thePageIsReloaded() error {
	return c.open()
}

func (c *cartTestContext) theAddIsRefused() error {
	var perr *cart.PriceParseError
	if !errors.As(c.err, &perr) {
		return fmt.Errorf("expected a price parse error, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) theRemovalIsRejected() error {
	var oor *cart.IndexOutOfRangeError
	if !errors.As(c.err, &oor) {
		return fmt.Errorf("expected an index out of range error, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.svc.Lines()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) lineIsWithQuantity(index int, title string, qty int) error {
	lines := c.svc.Lines()
	if index >= len(lines) {
		return fmt.Errorf("no line %d in %+v", index, lines)
	}
	if lines[index].Title != title || lines[index].Quantity != qty {
		return fmt.Errorf("expected %s x%d at %d, got %s x%d", title, qty, index, lines[index].Title, lines[index].Quantity)
	}
	return nil
}

func (c *cartTestContext) theItemCountIs(n int) error {
	if got := c.svc.TotalItemCount(); got != n {
		return fmt.Errorf("expected item count %d, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theTotalIs(want string) error {
	if got := cart.FormatPrice(c.svc.TotalAmount()); got != want {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (c *cartTestContext) theLastNotificationIs(severity, message string) error {
	if c.last == nil {
		return errors.New("no notification was shown")
	}
	if string(c.last.Severity) != severity || c.last.Message != message {
		return fmt.Errorf("expected %s %q, got %s %q", severity, message, c.last.Severity, c.last.Message)
	}
	return nil
}

func (c *cartTestContext) theStoredValueIs(want string) error {
	raw, err := c.kv.Get(context.Background(), cart.DefaultStorageKey)
	if err != nil {
		return err
	}
	if string(raw) != want {
		return fmt.Errorf("expected stored value %s, got %s", want, raw)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty (session|persisted) cart$`, tc.anEmptyCart)
	ctx.Step(`^a persisted cart whose stored value is '(.*)'$`, tc.aPersistedCartWhoseStoredValueIs)

	// When steps
	ctx.Step(`^I add "([^"]*)" priced "([^"]*)"$`, tc.iAddPriced)
	ctx.Step(`^I add "([^"]*)" priced "([^"]*)" (\d+) times$`, tc.iAddPricedTimes)
	ctx.Step(`^I remove line (-?\d+)$`, tc.iRemoveLine)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^the page is reloaded$`, tc.thePageIsReloaded)

	// Then steps
	ctx.Step(`^the add is refused$`, tc.theAddIsRefused)
	ctx.Step(`^the removal is rejected$`, tc.theRemovalIsRejected)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^line (\d+) is "([^"]*)" with quantity (\d+)$`, tc.lineIsWithQuantity)
	ctx.Step(`^the item count is (\d+)$`, tc.theItemCountIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the last notification is a (info|success|warning|error) "(.*)"$`, tc.theLastNotificationIs)
	ctx.Step(`^the stored value is '(.*)'$`, tc.theStoredValueIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
