package echoapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"

	errInvalidPage = echo.NewHTTPError(http.StatusNotFound, "invalid page")
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Pagination binds the `page` and `page_size` query params.
type Pagination struct {
	Page core.PageRequest
}

func (pg *Pagination) Bind(ctx echo.Context, conf core.PaginationConfig) error {
	pg.Page = core.PageRequest{Number: 1, Size: conf.PageSize}

	if val := ctx.QueryParam(pageParam); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return errInvalidPage
		}
		pg.Page.Number = n
	}
	if val := ctx.QueryParam(pageSizeParam); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			pg.Page.Size = size
		}
	}
	if conf.MaxPageSize > 0 && pg.Page.Size > conf.MaxPageSize {
		pg.Page.Size = conf.MaxPageSize
	}
	return nil
}

// bindListOptions binds ordering and pagination.
func bindListOptions(ctx echo.Context, conf core.PaginationConfig) (core.ListOptions, error) {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	pagination := new(Pagination)
	if err := pagination.Bind(ctx, conf); err != nil {
		return core.ListOptions{}, err
	}
	return core.ListOptions{Ordering: ordering.Orderings, Page: pagination.Page}, nil
}

// PageResponse is the paginated representation of a list.
type PageResponse struct {
	Count    int         `json:"count"`
	Next     null.String `json:"next"`
	Previous null.String `json:"previous"`
	Results  interface{} `json:"results"`
}

func newPageResponse(ctx echo.Context, page core.PageRequest, count int, results interface{}) (PageResponse, error) {
	if page.Number > 1 && page.Offset() >= count {
		return PageResponse{}, errInvalidPage
	}

	res := PageResponse{Count: count, Results: results}
	if page.Size > 0 && page.Offset()+page.Size < count {
		res.Next = null.StringFrom(pageURL(ctx, page.Number+1))
	}
	if page.Number > 1 {
		res.Previous = null.StringFrom(pageURL(ctx, page.Number-1))
	}
	return res, nil
}

func pageURL(ctx echo.Context, number int) string {
	req := ctx.Request()
	u := url.URL{
		Scheme: ctx.Scheme(),
		Host:   req.Host,
		Path:   req.URL.Path,
	}
	q := req.URL.Query()
	if number <= 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// paramID returns the positive integer path param `name`; anything else is not found.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryID returns the optional positive integer query param `name` (0 when absent).
func queryID(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(val)
	if err != nil || id < 1 {
		return 0, core.NewFieldError(name, "enter a valid id")
	}
	return id, nil
}

// list responds with the page of `results` out of `count`.
func list(ctx echo.Context, opts core.ListOptions, count int, results interface{}) error {
	res, err := newPageResponse(ctx, opts.Page, count, results)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
