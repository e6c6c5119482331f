package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fitmenu/internal/config"
	"fitmenu/internal/menuparse"
	"fitmenu/internal/metrics"
	"fitmenu/internal/models"
)

const programPage = `<!DOCTYPE html>
<html><body>
<div class="program">
  <div class="btn-detalii"><a href="#" onclick="detalii_meniu(42, '2024-01-05', '7')">Detalii</a></div>
  <div class="btn-detalii"><a href="#" onclick="detalii_meniu(43, '2024-01-06', '7')">Detalii</a></div>
</div>
</body></html>`

const menuPage = `<div class="modal-body"><h4>Meniul zilei</h4>
<p><strong>
-Omleta cu spanac</strong><br>Gramaj: 200g<br>280 kcal<br>proteine: 18g</p>
<p><b>
Pranz: pui cu orez</b><br>Gramaje: 350 g<br>340 kcal<br>proteine: 42 g</p>
</div>`

type fakeSite struct {
	programPage string
	menuPage    string
	status      int
	form        map[string]string
}

func (f *fakeSite) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/programe/creste-masa-musculara", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			http.Error(w, "unavailable", f.status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(f.programPage))
	})
	mux.HandleFunc("/fitfoodway/detalii_meniu", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.form = map[string]string{
			"id":         r.PostForm.Get("id"),
			"data":       r.PostForm.Get("data"),
			"program_id": r.PostForm.Get("program_id"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(f.menuPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, m *metrics.Metrics) *Client {
	t.Helper()
	return NewClient(config.SiteConfig{
		ProgramURL: srv.URL + "/programe/creste-masa-musculara",
		DetailsURL: srv.URL + "/fitfoodway/detalii_meniu",
		Timeout:    5 * time.Second,
		UserAgent:  "fitmenu-test",
	}, zaptest.NewLogger(t), m)
}

func TestClient_FetchMenu(t *testing.T) {
	site := &fakeSite{programPage: programPage, menuPage: menuPage}
	m := metrics.New()
	client := newTestClient(t, site.server(t), m)

	menu, err := client.FetchMenu(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", menu.Date)
	assert.Equal(t, "7", menu.ProgramID)
	assert.False(t, menu.FetchedAt.IsZero())
	assert.Equal(t, []models.Food{
		{Description: "Omleta cu spanac", Quantity: 200, Calories: 280, Proteins: 18},
		{Description: "Pranz: pui cu orez", Quantity: 350, Calories: 340, Proteins: 42},
	}, menu.Foods)
	assert.Equal(t, map[string]string{"id": "42", "data": "2024-01-05", "program_id": "7"}, site.form)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScrapesTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FoodsParsed))
	assert.Equal(t, 620.0, testutil.ToFloat64(m.MenuCalories))
}

func TestClient_FetchMenu_Failures(t *testing.T) {
	tests := []struct {
		name      string
		site      *fakeSite
		wantErr   error
		wantLabel string
	}{
		{
			name:      "server error",
			site:      &fakeSite{status: http.StatusBadGateway},
			wantErr:   ErrTransport,
			wantLabel: "transport",
		},
		{
			name:      "no details button",
			site:      &fakeSite{programPage: `<html><body><p>Inchis azi</p></body></html>`, menuPage: menuPage},
			wantErr:   ErrElementMissing,
			wantLabel: "element_missing",
		},
		{
			name:      "button without onclick",
			site:      &fakeSite{programPage: `<div class="btn-detalii"><a href="#">Detalii</a></div>`, menuPage: menuPage},
			wantErr:   ErrElementMissing,
			wantLabel: "element_missing",
		},
		{
			name:      "unexpected onclick arguments",
			site:      &fakeSite{programPage: `<div class="btn-detalii"><a onclick="detalii_meniu(42, '2024-01-05')">Detalii</a></div>`, menuPage: menuPage},
			wantErr:   menuparse.ErrArguments,
			wantLabel: "arguments",
		},
		{
			name:      "no menu container",
			site:      &fakeSite{programPage: programPage, menuPage: `<div class="modal-header">Meniu</div>`},
			wantErr:   ErrElementMissing,
			wantLabel: "element_missing",
		},
		{
			name: "truncated menu",
			site: &fakeSite{programPage: programPage, menuPage: `<div class="modal-body"><h4>Meniu</h4><p>
-Omleta</p><p>Gramaj: 200g</p></div>`},
			wantErr:   menuparse.ErrIncompleteRecord,
			wantLabel: "incomplete_record",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			client := newTestClient(t, tt.site.server(t), m)

			menu, err := client.FetchMenu(context.Background())

			assert.Nil(t, menu)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantLabel, ResultLabel(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ScrapesTotal.WithLabelValues(tt.wantLabel)))
		})
	}
}

func TestClient_RejectsNonTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	t.Cleanup(srv.Close)
	client := NewClient(config.SiteConfig{ProgramURL: srv.URL}, nil, nil)

	_, err := client.FetchDetailsArgs(context.Background())

	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_CanceledContext(t *testing.T) {
	site := &fakeSite{programPage: programPage, menuPage: menuPage}
	client := newTestClient(t, site.server(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchMenu(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "transport", ResultLabel(err))
}

func TestTextNodes(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(menuPage))
	require.NoError(t, err)

	nodes := TextNodes(doc.Find("div.modal-body"))

	assert.Equal(t, []string{
		"Meniul zilei",
		"\n",
		"\n-Omleta cu spanac", "Gramaj: 200g", "280 kcal", "proteine: 18g",
		"\n",
		"\nPranz: pui cu orez", "Gramaje: 350 g", "340 kcal", "proteine: 42 g",
		"\n",
	}, nodes)
}
