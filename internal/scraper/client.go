// internal/scraper/client.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"fitmenu/internal/config"
	"fitmenu/internal/menuparse"
	"fitmenu/internal/metrics"
	"fitmenu/internal/models"
)

const (
	detailsButtonSelector = "div.btn-detalii > a"
	menuBodySelector      = "div.modal-body"
)

var (
	// ErrElementMissing means the page no longer has the element the scraper
	// relies on.
	ErrElementMissing = errors.New("expected page element missing")
	// ErrTransport covers request failures, non-200 responses and bodies
	// that are not HTML text.
	ErrTransport = errors.New("transport error")
)

type Client struct {
	httpClient *http.Client
	site       config.SiteConfig
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewClient(site config.SiteConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := site.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		site:       site,
		logger:     logger,
		metrics:    m,
	}
}

// FetchMenu scrapes and parses today's menu of the configured program.
func (c *Client) FetchMenu(ctx context.Context) (*models.Menu, error) {
	start := time.Now()
	menu, err := c.fetchMenu(ctx)
	c.metrics.ObserveScrape(ResultLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveMenu(len(menu.Foods), menu.TotalCalories(), menu.TotalProteins())
	return menu, nil
}

func (c *Client) fetchMenu(ctx context.Context) (*models.Menu, error) {
	args, err := c.FetchDetailsArgs(ctx)
	if err != nil {
		return nil, err
	}
	nodes, err := c.FetchFragments(ctx, args)
	if err != nil {
		return nil, err
	}
	menu, err := menuparse.BuildMenu(args.Date, nodes, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu for %s: %w", args.Date, err)
	}
	menu.ProgramID = args.ProgramID
	menu.FetchedAt = time.Now().UTC()

	c.logger.Info("menu scraped",
		zap.String("date", menu.Date),
		zap.String("program_id", menu.ProgramID),
		zap.Int("foods", len(menu.Foods)))
	return menu, nil
}

// FetchDetailsArgs reads the arguments of today's "Detalii" button on the
// program page.
func (c *Client) FetchDetailsArgs(ctx context.Context) (menuparse.DetailsArgs, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.site.ProgramURL, nil)
	if err != nil {
		return menuparse.DetailsArgs{}, fmt.Errorf("failed to create request: %w", err)
	}
	doc, err := c.fetchDocument(req)
	if err != nil {
		return menuparse.DetailsArgs{}, err
	}

	button := doc.Find(detailsButtonSelector).First()
	if button.Length() == 0 {
		return menuparse.DetailsArgs{}, fmt.Errorf("%w: %s", ErrElementMissing, detailsButtonSelector)
	}
	onclick, ok := button.Attr("onclick")
	if !ok {
		return menuparse.DetailsArgs{}, fmt.Errorf("%w: onclick on %s", ErrElementMissing, detailsButtonSelector)
	}

	args, err := menuparse.ParseDetailsArgs(onclick)
	if err != nil {
		return menuparse.DetailsArgs{}, err
	}
	c.logger.Debug("details arguments",
		zap.String("id", args.ID),
		zap.String("date", args.Date),
		zap.String("program_id", args.ProgramID))
	return args, nil
}

// FetchFragments posts the details form and returns every text node of the
// menu container in document order, header included.
func (c *Client) FetchFragments(ctx context.Context, args menuparse.DetailsArgs) ([]string, error) {
	form := url.Values{}
	form.Set("id", args.ID)
	form.Set("data", args.Date)
	form.Set("program_id", args.ProgramID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.site.DetailsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	doc, err := c.fetchDocument(req)
	if err != nil {
		return nil, err
	}
	body := doc.Find(menuBodySelector).First()
	if body.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementMissing, menuBodySelector)
	}
	return TextNodes(body), nil
}

func (c *Client) fetchDocument(req *http.Request) (*goquery.Document, error) {
	return FetchDocument(c.httpClient, req, c.site.UserAgent)
}

// FetchDocument sends req and parses the HTML response.
func FetchDocument(httpClient *http.Client, req *http.Request, userAgent string) (*goquery.Document, error) {
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrTransport, req.Method, req.URL, resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isTextMedia(ct) {
		return nil, fmt.Errorf("%w: %s %s: unexpected content type %q", ErrTransport, req.Method, req.URL, ct)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, req.URL, err)
	}
	return doc, nil
}

func isTextMedia(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}

// ResultLabel maps a scrape error to the metric label used for it.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrElementMissing):
		return "element_missing"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return menuparse.Kind(err)
	}
}
