// Package catalog reads the product catalogue of the catering site and
// totals the macros of a day's selection.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fitmenu/internal/scraper"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrIncompleteProduct = errors.New("incomplete product page")
)

var (
	productIDPattern = regexp.MustCompile(`adauga_in_cos\((\d+),`)
	valuePattern     = regexp.MustCompile(`\s*(\d+(?:[.,]\d+)?)`)
)

// valuesPerProduct is price followed by the six macro values of a serving.
const valuesPerProduct = 7

type Macro struct {
	Grams         float64 `json:"grams"`
	Kcal          float64 `json:"kcal"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
	Proteins      float64 `json:"proteins"`
	Fibers        float64 `json:"fibers"`
}

func (m *Macro) add(o Macro) {
	m.Grams += o.Grams
	m.Kcal += o.Kcal
	m.Carbohydrates += o.Carbohydrates
	m.Fats += o.Fats
	m.Proteins += o.Proteins
	m.Fibers += o.Fibers
}

func (m Macro) String() string {
	return fmt.Sprintf("%.0fg, %.0f kcal, carbohydrates %.1fg, fats %.1fg, proteins %.1fg, fibers %.1fg",
		m.Grams, m.Kcal, m.Carbohydrates, m.Fats, m.Proteins, m.Fibers)
}

// ProductRef is a catalogue entry as listed on the products page.
type ProductRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type Product struct {
	ProductRef
	Name  string  `json:"name"`
	Price float64 `json:"price"` // lei, after discount
	Macro Macro   `json:"macro"`
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	concurrency int
	logger      *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, userAgent string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		userAgent:   userAgent,
		concurrency: 8,
		logger:      logger,
	}
}

func (c *Client) get(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return scraper.FetchDocument(c.httpClient, req, c.userAgent)
}

// ListProducts reads the products page.
func (c *Client) ListProducts(ctx context.Context) ([]ProductRef, error) {
	doc, err := c.get(ctx, c.baseURL+"/produse")
	if err != nil {
		return nil, err
	}

	var refs []ProductRef
	var parseErr error
	doc.Find(".menu-item-wrap > div.content").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		href, _ := item.Find("h2 > a").Attr("href")
		slug := href[strings.LastIndex(href, "/")+1:]
		onclick, _ := item.Find("a.btn").Attr("onclick")
		m := productIDPattern.FindStringSubmatch(onclick)
		if slug == "" || m == nil {
			parseErr = fmt.Errorf("%w: product entry without link or id (href %q, onclick %q)",
				scraper.ErrElementMissing, href, onclick)
			return false
		}
		refs = append(refs, ProductRef{ID: m[1], Slug: slug})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return refs, nil
}

// FetchProduct reads one product page. discount is a percentage taken off
// the listed price.
func (c *Client) FetchProduct(ctx context.Context, ref ProductRef, discount float64) (*Product, error) {
	doc, err := c.get(ctx, c.baseURL+"/p/"+ref.Slug)
	if err != nil {
		return nil, err
	}

	var values []float64
	doc.Find(".price, div.amount-per-serving > div").Each(func(_ int, s *goquery.Selection) {
		for _, line := range strings.Split(s.Text(), "\n") {
			m := valuePattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
			if m == nil {
				continue
			}
			v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
	})
	if len(values) < valuesPerProduct {
		return nil, fmt.Errorf("%w: %s has %d values, want %d", ErrIncompleteProduct, ref.Slug, len(values), valuesPerProduct)
	}

	return &Product{
		ProductRef: ref,
		Name:       strings.TrimSpace(doc.Find(".banner-text h1").First().Text()),
		Price:      values[0] * (100 - discount) / 100,
		Macro: Macro{
			Grams:         values[1],
			Kcal:          values[2],
			Carbohydrates: values[3],
			Fats:          values[4],
			Proteins:      values[5],
			Fibers:        values[6],
		},
	}, nil
}

// FetchAll reads every listed product, a bounded number at a time, keyed by
// product id.
func (c *Client) FetchAll(ctx context.Context, discount float64) (map[string]*Product, error) {
	c.logger.Info("getting information from all products")
	refs, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	products := make(map[string]*Product, len(refs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			product, err := c.FetchProduct(ctx, ref, discount)
			if err != nil {
				return fmt.Errorf("product %s: %w", ref.Slug, err)
			}
			mu.Lock()
			products[ref.ID] = product
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("catalogue loaded", zap.Int("products", len(products)))
	return products, nil
}

// SortedIDs returns the product ids in numeric order.
func SortedIDs(products map[string]*Product) []string {
	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA != nil || errB != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})
	return ids
}

type DaySummary struct {
	Day   string   `json:"day"`
	Menu  []string `json:"menu"`
	Price float64  `json:"price"`
	Macro Macro    `json:"macro"`
}

func (d DaySummary) String() string {
	return fmt.Sprintf("On %s the menu is: %s - %.2f Lei: %s.", d.Day, strings.Join(d.Menu, ", "), d.Price, d.Macro)
}

// SummarizeDay totals price and macros of the products picked for day.
func SummarizeDay(products map[string]*Product, day string, ids []string) (DaySummary, error) {
	summary := DaySummary{Day: day, Menu: []string{}}
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return DaySummary{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
		}
		summary.Menu = append(summary.Menu, product.Name)
		summary.Price += product.Price
		summary.Macro.add(product.Macro)
	}
	return summary, nil
}

// ParseDay reads a "Monday:28,39,16" selection.
func ParseDay(s string) (string, []string, error) {
	day, list, ok := strings.Cut(s, ":")
	day = strings.TrimSpace(day)
	if !ok || day == "" {
		return "", nil, fmt.Errorf("day selection %q: want <day>:<id>,<id>", s)
	}
	var ids []string
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := strconv.Atoi(id); err != nil {
			return "", nil, fmt.Errorf("day selection %q: product id %q is not a number", s, id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return "", nil, fmt.Errorf("day selection %q: no product ids", s)
	}
	return day, ids, nil
}
