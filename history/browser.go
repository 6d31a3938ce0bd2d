package history

import (
	"context"
	"errors"
	"sync"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

const (
	msgLoadFailed = "Error al cargar las órdenes"
	msgConnection = "Error de conexión al cargar las órdenes"
)

// Fetcher loads one page of history.
type Fetcher func(ctx context.Context, q Query) (models.HistoryPage, error)

// Banner is the error strip shown over an empty list.
type Banner struct {
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// Result is one fetched page, or the banner explaining why there is none.
type Result struct {
	Page   models.HistoryPage `json:"page"`
	Banner *Banner            `json:"banner,omitempty"`
}

// Fetch runs q and never fails: errors become a banner over an empty page.
// Missing pagination is filled in from the page itself.
func Fetch(ctx context.Context, fetch Fetcher, q Query) (Result, error) {
	page, err := fetch(ctx, q)
	if err != nil {
		utils.Error().WithError(err).Error("order history fetch failed")
		msg := msgLoadFailed
		if errors.Is(err, client.ErrTransport) {
			msg = msgConnection
		}
		return emptyResult(q, msg), err
	}
	if !page.Success {
		msg := page.Error
		if msg == "" {
			msg = msgLoadFailed
		}
		return emptyResult(q, msg), nil
	}
	if page.Data == nil {
		page.Data = []models.Order{}
	}
	if page.Pagination.ItemsPerPage == 0 {
		total := page.Pagination.TotalItems
		if total == 0 {
			total = (q.Page-1)*q.Limit + len(page.Data)
		}
		page.Pagination = Paginate(total, q.Page, q.Limit)
	}
	return Result{Page: page}, nil
}

func emptyResult(q Query, msg string) Result {
	return Result{
		Page: models.HistoryPage{
			Data:       []models.Order{},
			Pagination: Paginate(0, 1, q.Limit),
			Error:      msg,
		},
		Banner: &Banner{Message: msg, Retry: true},
	}
}

// Browser is the state of the history list: what is loaded, which query
// produced it and whether more pages can follow.
type Browser struct {
	fetch Fetcher

	mu      sync.Mutex
	query   Query
	orders  []models.Order
	total   int
	page    int
	hasMore bool
	banner  *Banner
}

func NewBrowser(fetch Fetcher) *Browser {
	return &Browser{fetch: fetch, query: DefaultQuery(), orders: []models.Order{}}
}

func (b *Browser) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

func (b *Browser) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Order(nil), b.orders...)
}

func (b *Browser) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *Browser) HasMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasMore
}

func (b *Browser) Banner() *Banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.banner
}

// Reload fetches the first page of the current query and replaces the list.
func (b *Browser) Reload(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reload(ctx)
}

func (b *Browser) reload(ctx context.Context) {
	q := b.query
	q.Page = 1
	res, _ := Fetch(ctx, b.fetch, q)

	b.banner = res.Banner
	b.orders = res.Page.Data
	if res.Banner != nil {
		b.total, b.page, b.hasMore = 0, 1, false
		return
	}
	b.total = res.Page.Pagination.TotalItems
	b.page = max(res.Page.Pagination.CurrentPage, 1)
	b.hasMore = res.Page.Pagination.HasNextPage
}

// Next appends the following page. An empty or failed page ends the list.
func (b *Browser) Next(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasMore {
		return
	}

	q := b.query
	q.Page = b.page + 1
	res, _ := Fetch(ctx, b.fetch, q)
	if res.Banner != nil || len(res.Page.Data) == 0 {
		b.hasMore = false
		return
	}
	b.orders = append(b.orders, res.Page.Data...)
	b.page = q.Page
	b.hasMore = res.Page.Pagination.HasNextPage
}

func (b *Browser) ApplyFilters(ctx context.Context, f Filters) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query.Filters = f
	b.query = b.query.WithDefaults()
	b.reload(ctx)
}

func (b *Browser) ClearFilters(ctx context.Context) {
	b.ApplyFilters(ctx, Filters{})
}

func (b *Browser) ToggleSort(ctx context.Context, field string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = b.query.Toggle(field)
	b.reload(ctx)
}

// View is a snapshot of the list for rendering.
type View struct {
	Query   Query          `json:"query"`
	Orders  []models.Order `json:"orders"`
	Total   int            `json:"total"`
	HasMore bool           `json:"hasMore"`
	Banner  *Banner        `json:"banner,omitempty"`
}

func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return View{
		Query:   b.query,
		Orders:  append([]models.Order{}, b.orders...),
		Total:   b.total,
		HasMore: b.hasMore,
		Banner:  b.banner,
	}
}
