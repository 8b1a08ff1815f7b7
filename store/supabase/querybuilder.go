package supastore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-paybridge/core"
)

// QueryBuilder assembles one PostgREST request against a table. The fluent
// surface mirrors the remote client this replaces: From, Select, Eq, In,
// Order, Single, MaybeSingle. Terminal build methods produce the transport
// request, execution and decoding live in the adapter.
type QueryBuilder struct {
	baseURL string
	table   string

	selectExpr string
	filters    []queryFilter
	orders     []queryOrder
	limit      int

	single      bool
	maybeSingle bool
	upsert      bool
}

type queryFilter struct {
	column string
	value  string
}

type queryOrder struct {
	// referenced names an embedded table when the sort applies to nested
	// rows rather than the root table.
	referenced string
	expr       string
}

func newQueryBuilder(baseURL, table string) *QueryBuilder {
	return &QueryBuilder{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		table:   strings.TrimSpace(table),
	}
}

func (b *QueryBuilder) Select(expr string) *QueryBuilder {
	b.selectExpr = strings.TrimSpace(expr)
	return b
}

func (b *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	b.filters = append(b.filters, queryFilter{
		column: strings.TrimSpace(column),
		value:  "eq." + formatFilterValue(value),
	})
	return b
}

func (b *QueryBuilder) In(column string, values ...string) *QueryBuilder {
	b.filters = append(b.filters, queryFilter{
		column: strings.TrimSpace(column),
		value:  "in.(" + strings.Join(values, ",") + ")",
	})
	return b
}

// Order sorts the root rows; expr may address a JSON key (metadata->index).
func (b *QueryBuilder) Order(expr string) *QueryBuilder {
	b.orders = append(b.orders, queryOrder{expr: strings.TrimSpace(expr)})
	return b
}

// OrderReferenced sorts rows of an embedded table within each parent row.
func (b *QueryBuilder) OrderReferenced(table, expr string) *QueryBuilder {
	b.orders = append(b.orders, queryOrder{
		referenced: strings.TrimSpace(table),
		expr:       strings.TrimSpace(expr),
	})
	return b
}

func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.limit = n
	return b
}

// Single requires exactly one row; zero rows is a no-rows failure surfaced
// by the server.
func (b *QueryBuilder) Single() *QueryBuilder {
	b.single = true
	return b
}

// MaybeSingle requires at most one row; zero rows decodes to nil.
func (b *QueryBuilder) MaybeSingle() *QueryBuilder {
	b.single = true
	b.maybeSingle = true
	return b
}

// Upsert switches an insert to merge-duplicates resolution so replayed
// writes land on the existing row.
func (b *QueryBuilder) Upsert() *QueryBuilder {
	b.upsert = true
	return b
}

func (b *QueryBuilder) BuildGet() core.TransportRequest {
	return b.build(http.MethodGet, nil)
}

func (b *QueryBuilder) BuildInsert(payload any) (core.TransportRequest, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return core.TransportRequest{}, core.NewValidationError("encode insert payload: " + err.Error())
	}
	return b.build(http.MethodPost, body), nil
}

func (b *QueryBuilder) BuildUpdate(payload any) (core.TransportRequest, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return core.TransportRequest{}, core.NewValidationError("encode update payload: " + err.Error())
	}
	return b.build(http.MethodPatch, body), nil
}

func (b *QueryBuilder) BuildDelete() core.TransportRequest {
	return b.build(http.MethodDelete, nil)
}

func (b *QueryBuilder) build(method string, body []byte) core.TransportRequest {
	query := map[string]string{}
	if b.selectExpr != "" {
		query["select"] = b.selectExpr
	}
	for _, filter := range b.filters {
		query[filter.column] = filter.value
	}
	for _, order := range b.orders {
		key := "order"
		if order.referenced != "" {
			key = order.referenced + ".order"
		}
		if existing, ok := query[key]; ok {
			query[key] = existing + "," + order.expr
		} else {
			query[key] = order.expr
		}
	}
	if b.limit > 0 {
		query["limit"] = fmt.Sprintf("%d", b.limit)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if b.single {
		headers["Accept"] = "application/vnd.pgrst.object+json"
	}

	prefer := []string{}
	if method == http.MethodPost || method == http.MethodPatch {
		prefer = append(prefer, "return=representation")
	}
	if method == http.MethodPost && b.upsert {
		prefer = append(prefer, "resolution=merge-duplicates")
	}
	if len(prefer) > 0 {
		headers["Prefer"] = strings.Join(prefer, ",")
	}

	return core.TransportRequest{
		Method:  method,
		URL:     b.baseURL + "/" + b.table,
		Headers: headers,
		Query:   query,
		Body:    body,
	}
}

func formatFilterValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case bool:
		if typed {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(typed)
	}
}
