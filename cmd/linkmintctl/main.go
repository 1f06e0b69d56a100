package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/app/repository"
	"github.com/linkmint/linkmint/internal/pkg/catalog"
	"github.com/linkmint/linkmint/internal/pkg/config"
	"github.com/linkmint/linkmint/internal/pkg/database"
	"github.com/linkmint/linkmint/internal/pkg/env"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
	"github.com/linkmint/linkmint/internal/pkg/payments"
	"github.com/linkmint/linkmint/internal/pkg/security"
)

const previewTokenTTL = time.Hour

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]

	database.SetupDatabase()
	repos := repository.NewRepositories(database.GetDB())

	cfg := config.Load()
	if err := cfg.ApplyCredentials(repos.Credential); err != nil {
		log.Fatalf("Failed to load stored credentials: %v", err)
	}

	switch command {
	case "stripe:set-key":
		setKey(repos, models.CredentialProviderStripe, args)
	case "printful:set-key":
		setKey(repos, models.CredentialProviderPrintful, args)
	case "printful:list":
		printfulList(cfg, args)
	case "printful:import":
		printfulImport(cfg, repos, args)
	case "product:publish":
		productPublish(cfg, repos, args)
	case "product:unpublish":
		productUnpublish(repos, args)
	case "product:list":
		productList(repos, args)
	case "preview-token":
		previewToken(cfg, repos, args)
	case "stats":
		stats(cfg, args)
	default:
		printUsage()
		os.Exit(1)
	}
}

func setKey(repos *repository.Repositories, provider string, args []string) {
	if len(args) < 1 || strings.TrimSpace(args[0]) == "" {
		log.Fatalf("Usage: linkmintctl %s:set-key <key>", provider)
	}
	if err := repos.Credential.Set(provider, strings.TrimSpace(args[0])); err != nil {
		log.Fatalf("Failed to store %s key: %v", provider, err)
	}
	fmt.Printf("Stored %s secret key\n", provider)
}

func printfulList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("printful:list", flag.ExitOnError)
	search := fs.String("search", "", "filter products by name")
	fs.Parse(args)

	client := fulfillment.NewClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	products, err := client.ListStoreProducts(ctx)
	if err != nil {
		log.Fatalf("Failed to list provider products: %v", err)
	}
	for _, p := range products {
		if *search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*search)) {
			continue
		}
		fmt.Printf("%s: %s\n", p.ID, p.Name)
	}
}

func printfulImport(cfg *config.Config, repos *repository.Repositories, args []string) {
	fs := flag.NewFlagSet("printful:import", flag.ExitOnError)
	price := fs.Int64("price", 0, "price in minor units (required)")
	currency := fs.String("currency", "EUR", "ISO currency code")
	theme := fs.String("theme", "default", "storefront theme")
	if len(args) < 1 {
		log.Fatal("Usage: linkmintctl printful:import <product-id> --price N [--currency EUR] [--theme default]")
	}
	productID := args[0]
	fs.Parse(args[1:])
	if *price <= 0 {
		log.Fatal("--price must be a positive amount in minor units")
	}

	svc := catalog.NewService(repos.Product, fulfillment.NewClient(cfg), catalog.FSThemeResolver{ViewsDir: "views"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	product, err := svc.Import(ctx, productID, *price, *currency, *theme)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Imported %q as slug %s (unpublished)\n", product.Title, product.Slug)
	fmt.Printf("Preview: %s/p/%s\n", cfg.BaseURL, product.Slug)
}

func productPublish(cfg *config.Config, repos *repository.Repositories, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: linkmintctl product:publish <slug>")
	}
	svc := catalog.NewService(repos.Product, fulfillment.NewClient(cfg), catalog.FSThemeResolver{ViewsDir: "views"})
	product, err := svc.Publish(args[0])
	if err != nil {
		log.Fatalf("Publish failed: %v", err)
	}
	fmt.Printf("Published: %s -> %s/p/%s\n", product.Slug, cfg.BaseURL, product.Slug)
}

func productUnpublish(repos *repository.Repositories, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: linkmintctl product:unpublish <slug>")
	}
	svc := catalog.NewService(repos.Product, nil, catalog.FSThemeResolver{ViewsDir: "views"})
	if err := svc.Unpublish(args[0]); err != nil {
		log.Fatalf("Unpublish failed: %v", err)
	}
	fmt.Printf("Unpublished: %s\n", args[0])
}

func productList(repos *repository.Repositories, args []string) {
	fs := flag.NewFlagSet("product:list", flag.ExitOnError)
	publishedOnly := fs.Bool("published", false, "only published products")
	theme := fs.String("theme", "", "filter by theme")
	fs.Parse(args)

	products, err := repos.Product.List(0, 1000)
	if err != nil {
		log.Fatalf("Failed to list products: %v", err)
	}
	for _, p := range products {
		if *publishedOnly && !p.Published {
			continue
		}
		if *theme != "" && p.Theme != *theme {
			continue
		}
		fmt.Printf("%-24s %-12s price:%d %s published:%t theme:%s\n",
			p.Slug, p.FulfillmentProductID, p.PriceCents, p.Currency, p.Published, p.Theme)
	}
}

func previewToken(cfg *config.Config, repos *repository.Repositories, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: linkmintctl preview-token <slug>")
	}
	slug := args[0]
	if _, err := repos.Product.GetBySlug(slug); err != nil {
		log.Fatalf("Unknown product %q: %v", slug, err)
	}
	token, err := security.GeneratePreviewToken(slug, previewTokenTTL, cfg.PreviewTokenSecret)
	if err != nil {
		log.Fatalf("Token generation failed: %v", err)
	}
	fmt.Printf("%s/p/%s?preview=%s\n", cfg.BaseURL, slug, token)
}

func stats(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	days := fs.Int("since", 30, "lookback window in days")
	fs.Parse(args)

	client := payments.NewClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	charges, err := client.ListCharges(ctx, time.Now().AddDate(0, 0, -*days))
	if err != nil {
		log.Fatalf("Failed to list charges: %v", err)
	}
	var total int64
	for _, ch := range charges {
		if ch.Paid && !ch.Refunded {
			total += ch.Amount
		}
	}
	fmt.Printf("GMV %dd: %.2f\n", *days, float64(total)/100)
}

func printUsage() {
	fmt.Println("Usage: linkmintctl [command]")
	fmt.Println("Commands:")
	fmt.Println("  stripe:set-key <key>          - store the payment processor secret key")
	fmt.Println("  printful:set-key <key>        - store the fulfillment provider API key")
	fmt.Println("  printful:list [--search s]    - list provider store products")
	fmt.Println("  printful:import <id> --price N [--currency EUR] [--theme default]")
	fmt.Println("                                - import a provider product into the catalog")
	fmt.Println("  product:publish <slug>        - publish a product page")
	fmt.Println("  product:unpublish <slug>      - unpublish a product page")
	fmt.Println("  product:list [--published] [--theme t]")
	fmt.Println("                                - list catalog products")
	fmt.Println("  preview-token <slug>          - issue a preview link for an unpublished page")
	fmt.Println("  stats [--since days]          - gross merchandise volume from paid charges")
}
