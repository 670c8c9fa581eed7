package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/internal/notify"
	"MiniCart/internal/shopapi"
	"MiniCart/internal/storage"
	"MiniCart/pkg/kit"
)

const usage = `usage: cart <command>

commands:
  products             list the catalog with the amount already in the cart
  list                 show the cart
  add <id>             add one unit of a product
  remove <id>          remove a product line
  set <id> <amount>    set the amount of a product line
`

var errUsage = errors.New("invalid arguments")

func main() {
	log := kit.NewLogger("cart", getenv("LOG_LEVEL", "warn"))
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), os.Args[1:], os.Stdout, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	timeout, err := time.ParseDuration(getenv("API_TIMEOUT", "3s"))
	if err != nil {
		log.Error("invalid API_TIMEOUT", zap.Error(err))
		return err
	}

	api := shopapi.NewClient(getenv("API_URL", "http://localhost:8082"), shopapi.Options{
		Timeout: timeout,
		Log:     log,
	})

	slot, closeSlot, err := openSlot(ctx, log)
	if err != nil {
		log.Error("open cart storage failed", zap.Error(err))
		return err
	}
	defer closeSlot()

	store, err := cart.New(ctx, cart.Deps{
		Catalog:  api,
		Stock:    api,
		Slot:     slot,
		Notifier: notify.Multi(notify.NewWriter(os.Stderr), notify.NewLog(log)),
		Log:      log,
	})
	if err != nil {
		log.Error("load cart failed", zap.Error(err))
		return err
	}

	switch args[0] {
	case "products":
		products, err := api.Products(ctx)
		if err != nil {
			log.Error("list products failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "error: could not load products")
			return err
		}
		printProducts(out, products, store.Amounts())
		return nil

	case "list":
		printCart(out, store.Cart())
		return nil

	case "add", "remove":
		if len(args) != 2 {
			return errUsage
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errUsage
		}

		var c cart.Cart
		if args[0] == "add" {
			c, err = store.AddProduct(ctx, id)
		} else {
			c, err = store.RemoveProduct(ctx, id)
		}
		if err != nil {
			return err
		}
		printCart(out, c)
		return nil

	case "set":
		if len(args) != 3 {
			return errUsage
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errUsage
		}
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return errUsage
		}

		c, err := store.UpdateProductAmount(ctx, cart.UpdateAmount{ProductID: id, Amount: amount})
		if err != nil {
			return err
		}
		printCart(out, c)
		return nil

	default:
		return errUsage
	}
}

// openSlot uses Redis when REDIS_ADDR is set and a local file otherwise.
func openSlot(ctx context.Context, log *zap.Logger) (cart.Slot, func(), error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		slot, err := storage.NewRedisSlot(client, getenv("CART_KEY", storage.DefaultKey))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		if err := slot.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Debug("using redis cart storage", zap.String("addr", addr), zap.String("key", slot.Key()))
		return slot, func() { _ = client.Close() }, nil
	}

	path := os.Getenv("CART_FILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(home, ".minicart.json")
	}
	slot, err := storage.NewFileSlot(path)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("using file cart storage", zap.String("path", slot.Path()))
	return slot, func() {}, nil
}

func printProducts(out io.Writer, products []cart.Product, amounts map[int64]int) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tIN CART")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Title, formatPrice(p.Price), amounts[p.ID])
	}
	_ = tw.Flush()
}

func printCart(out io.Writer, c cart.Cart) {
	if len(c) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return
	}

	total := decimal.Zero
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tAMOUNT\tSUBTOTAL")
	for _, l := range c {
		subtotal := l.Price.Mul(decimal.NewFromInt(int64(l.Amount)))
		total = total.Add(subtotal)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			l.ProductID, l.Title, formatPrice(l.Price), l.Amount, formatPrice(subtotal))
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", formatPrice(total))
	_ = tw.Flush()
}

func formatPrice(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
