package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/app"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
)

var (
	addPrice string
	addImage string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Work with the cart from the terminal",
	Long: `Work with the cart from the terminal.

Each subcommand is its own session, so use --policy persisted (with
--storage sqlite or postgres) to keep the cart between invocations, or
"cart shell" to keep a session cart for the life of one process.`,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a package; without --price the catalog price is used",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return addPackage(ctx, a, args[0], addPrice, addImage)
		})
	},
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show cart lines, item count and total",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			printCart(cmd.OutOrStdout(), a.Cart.Snapshot())
			return nil
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove the line at a zero-based index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return removeLine(ctx, a, args[0])
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Cart.Clear(ctx)
		})
	},
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Run the simulated checkout and wait for it to finish",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return runCheckout(ctx, a)
		})
	},
}

var cartShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Read cart commands from stdin until EOF or \"quit\"",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return runShell(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List the event packages on offer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat := catalog.Default
		if cfg.CatalogPath != "" {
			cat = func() (*catalog.Catalog, error) { return catalog.LoadFile(cfg.CatalogPath) }
		}
		c, err := cat()
		if err != nil {
			return err
		}
		printPackages(cmd.OutOrStdout(), c.All())
		return nil
	},
}

func init() {
	cartAddCmd.Flags().StringVar(&addPrice, "price", "", "Displayed price text, e.g. \"$1,250.00\"")
	cartAddCmd.Flags().StringVar(&addImage, "image", "", "Image reference")

	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartCheckoutCmd)
	cartCmd.AddCommand(cartShellCmd)
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := app.Build(ctx, cfg, logger, notify.NewTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}

func addPackage(ctx context.Context, a *app.App, title, price, image string) error {
	if price == "" {
		pkg, err := a.Catalog.Find(title)
		if err != nil {
			return fmt.Errorf("%q: %w (pass --price to add a custom package)", title, err)
		}
		price = pkg.Price
		if image == "" {
			image = pkg.Image
		}
	}
	_, err := a.Cart.AddItem(ctx, title, price, image)
	return err
}

func removeLine(ctx context.Context, a *app.App, arg string) error {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid index %q", arg)
	}
	_, err = a.Cart.RemoveLine(ctx, index)
	return err
}

func runCheckout(ctx context.Context, a *app.App) error {
	if err := a.Checkout.Start(ctx); err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			return nil
		}
		return err
	}
	select {
	case <-a.Checkout.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const shellHelp = `commands:
  add <title> [| <price> [| <image>]]
  remove <index>
  list | count | total
  clear
  checkout
  packages
  quit`

func runShell(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, shellHelp)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch verb {
		case "add":
			parts := strings.Split(rest, "|")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			parts = append(parts, "", "")
			err = addPackage(ctx, a, parts[0], parts[1], parts[2])
		case "remove":
			err = removeLine(ctx, a, rest)
		case "list":
			printCart(out, a.Cart.Snapshot())
		case "count":
			fmt.Fprintln(out, a.Cart.TotalItemCount())
		case "total":
			fmt.Fprintln(out, cart.FormatPrice(a.Cart.TotalAmount()))
		case "clear":
			err = a.Cart.Clear(ctx)
		case "checkout":
			err = runCheckout(ctx, a)
		case "packages":
			printPackages(out, a.Catalog.All())
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, shellHelp)
		default:
			fmt.Fprintf(out, "unknown command %q\n", verb)
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func printCart(w io.Writer, snap cart.Snapshot) {
	if snap.Empty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPACKAGE\tQTY\tPRICE\tSUBTOTAL")
	for i, l := range snap.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i, l.Title, l.Quantity,
			cart.FormatPrice(l.UnitPrice), cart.FormatPrice(l.Subtotal().Round(2)))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Items: %d  Total: %s\n", snap.ItemCount, cart.FormatPrice(snap.Total))
}

func printPackages(w io.Writer, pkgs []catalog.Package) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PACKAGE\tPRICE\tDESCRIPTION")
	for _, p := range pkgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Title, p.Price, p.Description)
	}
	_ = tw.Flush()
}
