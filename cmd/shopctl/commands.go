package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chronoshop/internal/domain/shop"
	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
	"chronoshop/internal/ws"
)

// syncUser pulls the current user into the session so cart and wishlist
// mutations compute against the server's latest state, not an empty record
// from a fresh process.
func (a *app) syncUser(ctx context.Context) (*user.User, error) {
	u, err := a.client.Me(ctx)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrAuthExpired) {
			return nil, fmt.Errorf("not logged in, run `shopctl login` first")
		}
		return nil, err
	}
	return u, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", u.FullName, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.syncUser(cmd.Context()) // best effort, hydrates the session
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.syncUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s cart=%d wishlist=%d\n",
				u.FullName, u.Email, u.Role, len(u.Cart), len(u.Wishlist))
			return nil
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the watch catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.client.Products(cmd.Context(), search)
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-28s %8.2f  stock=%d\n",
					p.ID, p.Brand, p.Name, float64(p.Price), p.Stock)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name or brand")
	return cmd
}

func newCartCmd(a *app) *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	cart.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			p, err := a.client.Product(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.shop.AddToCart(cmd.Context(), *p); err != nil {
				if xerrors.Is(err, xerrors.ErrStockExceeded) {
					return fmt.Errorf("%q is out of stock for that quantity", p.Name)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q\n", p.Name)
			return nil
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "dec <product-id>",
		Short: "Remove one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			return a.shop.DecreaseFromCart(cmd.Context(), args[0])
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "rm <product-id>",
		Short: "Remove a product entirely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			return a.shop.RemoveFromCart(cmd.Context(), args[0])
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			return a.shop.ClearCart(cmd.Context())
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.syncUser(cmd.Context())
			if err != nil {
				return err
			}
			for _, line := range u.Cart {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-28s x%d  %8.2f\n",
					line.ProductID, line.Name, line.Quantity, float64(line.UnitPrice))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subtotal: %.2f\n", float64(shop.Subtotal(u.Cart)))
			return nil
		},
	})

	return cart
}

func newWishCmd(a *app) *cobra.Command {
	wish := &cobra.Command{
		Use:   "wish",
		Short: "Manage the wishlist",
	}

	wish.AddCommand(&cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add or remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			p, err := a.client.Product(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			added, err := a.shop.ToggleWishlist(cmd.Context(), *p)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "added %q to wishlist\n", p.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %q from wishlist\n", p.Name)
			}
			return nil
		},
	})

	wish.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.syncUser(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range u.Wishlist {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-28s %8.2f  stock=%d\n",
					e.ProductID, e.Name, float64(e.Price), e.Stock)
			}
			return nil
		},
	})

	return wish
}

func newOrderCmd(a *app) *cobra.Command {
	order := &cobra.Command{
		Use:   "order",
		Short: "Place and track orders",
	}

	order.AddCommand(&cobra.Command{
		Use:   "place",
		Short: "Convert the cart into an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			o, err := a.client.PlaceOrder(cmd.Context())
			if err != nil {
				return err
			}
			// Resync so the emptied cart is reflected locally.
			a.syncUser(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "order %s placed, total %.2f\n", o.ID, float64(o.Total))
			return nil
		},
	})

	order.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List past orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}
			orders, err := a.client.Orders(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %8.2f  %s\n",
					o.ID, o.Status, float64(o.Total), o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	})

	return order
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live session and order events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncUser(cmd.Context()); err != nil {
				return err
			}

			listener := ws.NewListener(a.cfg.WSURL, a.session, a.logger)
			listener.On(ws.EventTypeOrderUpdated, printEvent)
			listener.On(ws.EventTypeOrderPlaced, printEvent)
			listener.On(ws.EventTypeStockChanged, printEvent)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := listener.Dial(ctx); err != nil {
				return err
			}
			defer listener.Close()

			err := listener.Listen(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
}

func printEvent(evt ws.Event) {
	fmt.Printf("[%s] %s %s\n", evt.Timestamp.Format("15:04:05"), evt.Type, string(evt.Data))
}
