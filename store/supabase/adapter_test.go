package supastore

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-paybridge/core"
)

type transportScript struct {
	response core.TransportResponse
	err      error
}

type fakeTransport struct {
	mu       sync.Mutex
	scripts  []transportScript
	requests []core.TransportRequest
}

func newFakeTransport(scripts ...transportScript) *fakeTransport {
	return &fakeTransport{scripts: scripts}
}

func (f *fakeTransport) Kind() string {
	return "fake"
}

func (f *fakeTransport) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	index := len(f.requests) - 1
	if index < len(f.scripts) {
		script := f.scripts[index]
		return script.response, script.err
	}
	if len(f.scripts) > 0 {
		last := f.scripts[len(f.scripts)-1]
		return last.response, last.err
	}
	return core.TransportResponse{StatusCode: http.StatusOK, Body: []byte("[]")}, nil
}

func (f *fakeTransport) lastRequest(t *testing.T) core.TransportRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("no transport requests recorded")
	}
	return f.requests[len(f.requests)-1]
}

func jsonResponse(status int, body string) core.TransportResponse {
	return core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

func newTestAdapter(t *testing.T, fake *fakeTransport) *Adapter {
	t.Helper()
	adapter, err := New(core.SupabaseConfig{
		URL:            "https://demo.supabase.co",
		AnonKey:        "anon-key",
		ServiceRoleKey: "service-key",
	}, WithTransport(fake))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

func TestNewRequiresURLAndAnonKey(t *testing.T) {
	_, err := New(core.SupabaseConfig{})
	if err == nil {
		t.Fatalf("expected config validation failure")
	}
	if !core.IsConfigValidation(err) {
		t.Fatalf("expected config validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "supabase.url") || !strings.Contains(err.Error(), "supabase.anon_key") {
		t.Fatalf("expected missing fields in message, got %q", err.Error())
	}
}

func TestGetProductsBuildsEmbeddedOrderedQuery(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(http.StatusOK, `[
		{"id": "p1", "active": true, "name": "Starter", "metadata": {"index": 1},
		 "prices": [
			{"id": "pr_low", "product_id": "p1", "active": true, "unit_amount": 1000, "currency": "usd"},
			{"id": "pr_high", "product_id": "p1", "active": true, "unit_amount": 5000, "currency": "usd"}
		 ]}
	]`)})
	adapter := newTestAdapter(t, fake)

	products, err := adapter.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("get products: %v", err)
	}
	if len(products) != 1 || len(products[0].Prices) != 2 {
		t.Fatalf("unexpected products: %+v", products)
	}
	if products[0].Prices[0].ID != "pr_low" {
		t.Fatalf("embedded price order lost: %+v", products[0].Prices)
	}

	req := fake.lastRequest(t)
	if req.Method != http.MethodGet {
		t.Fatalf("expected GET, got %s", req.Method)
	}
	if req.URL != "https://demo.supabase.co/rest/v1/products" {
		t.Fatalf("unexpected url: %s", req.URL)
	}
	if req.Query["select"] != "*, prices(*)" {
		t.Fatalf("unexpected select: %q", req.Query["select"])
	}
	if req.Query["active"] != "eq.true" || req.Query["prices.active"] != "eq.true" {
		t.Fatalf("active filters missing: %+v", req.Query)
	}
	if req.Query["order"] != "metadata->index" {
		t.Fatalf("root order missing: %+v", req.Query)
	}
	if req.Query["prices.order"] != "unit_amount" {
		t.Fatalf("embedded order missing: %+v", req.Query)
	}
	if req.Headers["apikey"] != "service-key" {
		t.Fatalf("data request should use the service role key, got %q", req.Headers["apikey"])
	}
}

func TestGetCustomerToleratesNoRows(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(
		http.StatusNotAcceptable,
		`{"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned"}`,
	)})
	adapter := newTestAdapter(t, fake)

	customer, err := adapter.GetCustomer(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no-rows to be tolerated, got %v", err)
	}
	if customer != nil {
		t.Fatalf("expected nil customer, got %+v", customer)
	}

	req := fake.lastRequest(t)
	if req.Query["id"] != "eq.u1" {
		t.Fatalf("id filter missing: %+v", req.Query)
	}
	if req.Headers["Accept"] != "application/vnd.pgrst.object+json" {
		t.Fatalf("single read should request an object response, got %q", req.Headers["Accept"])
	}
}

func TestGetCustomerPropagatesOtherFailures(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(
		http.StatusInternalServerError,
		`{"code": "XX000", "message": "connection lost"}`,
	)})
	adapter := newTestAdapter(t, fake)

	_, err := adapter.GetCustomer(context.Background(), "u1")
	if err == nil {
		t.Fatalf("expected backend failure")
	}
	if !core.IsBackend(err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection lost") {
		t.Fatalf("expected remote message preserved, got %q", err.Error())
	}
}

func TestCreateProductUpserts(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(
		http.StatusCreated,
		`{"id": "p1", "active": true, "name": "Pro"}`,
	)})
	adapter := newTestAdapter(t, fake)

	product, err := adapter.CreateProduct(context.Background(), core.CreateProductInput{ID: "p1", Name: "Pro"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.ID != "p1" || !product.Active {
		t.Fatalf("unexpected product: %+v", product)
	}

	req := fake.lastRequest(t)
	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", req.Method)
	}
	prefer := req.Headers["Prefer"]
	if !strings.Contains(prefer, "return=representation") || !strings.Contains(prefer, "resolution=merge-duplicates") {
		t.Fatalf("expected upsert prefer header, got %q", prefer)
	}
	if !strings.Contains(string(req.Body), `"name":"Pro"`) {
		t.Fatalf("payload missing name: %s", req.Body)
	}
}

func TestGetSubscriptionNestsTwoLevels(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(http.StatusOK, `{
		"id": "s1", "user_id": "u1", "status": "active", "price_id": "pr1",
		"prices": {
			"id": "pr1", "product_id": "p1", "active": true, "unit_amount": 2000, "currency": "usd",
			"products": {"id": "p1", "active": true, "name": "Pro"}
		}
	}`)})
	adapter := newTestAdapter(t, fake)

	subscription, err := adapter.GetSubscription(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if subscription == nil || subscription.Price == nil || subscription.Price.Product == nil {
		t.Fatalf("expected two-level nesting, got %+v", subscription)
	}
	if subscription.Price.Product.Name != "Pro" {
		t.Fatalf("unexpected nested product: %+v", subscription.Price.Product)
	}

	req := fake.lastRequest(t)
	if req.Query["select"] != "*, prices(*, products(*))" {
		t.Fatalf("unexpected select: %q", req.Query["select"])
	}
	if req.Query["status"] != "in.(trialing,active)" {
		t.Fatalf("status filter missing: %+v", req.Query)
	}
}

func TestGetSubscriptionNoMatchIsNil(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(
		http.StatusNotAcceptable,
		`{"code": "PGRST116", "message": "no rows"}`,
	)})
	adapter := newTestAdapter(t, fake)

	subscription, err := adapter.GetSubscription(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected nil result, got error %v", err)
	}
	if subscription != nil {
		t.Fatalf("expected nil subscription, got %+v", subscription)
	}
}

func TestSignInDecodesSession(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(http.StatusOK, `{
		"access_token": "jwt-token",
		"refresh_token": "refresh-token",
		"expires_in": 3600,
		"user": {"id": "u1", "email": "ada@example.com"}
	}`)})
	adapter := newTestAdapter(t, fake)

	result, err := adapter.SignIn(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if result.User == nil || result.User.ID != "u1" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.Session == nil || result.Session.AccessToken != "jwt-token" {
		t.Fatalf("unexpected session: %+v", result.Session)
	}
	if result.Session.RefreshToken == nil || *result.Session.RefreshToken != "refresh-token" {
		t.Fatalf("refresh token lost: %+v", result.Session)
	}

	req := fake.lastRequest(t)
	if req.URL != "https://demo.supabase.co/auth/v1/token" {
		t.Fatalf("unexpected auth url: %s", req.URL)
	}
	if req.Query["grant_type"] != "password" {
		t.Fatalf("grant type missing: %+v", req.Query)
	}
	if req.Headers["apikey"] != "anon-key" {
		t.Fatalf("auth request should use the anon key, got %q", req.Headers["apikey"])
	}
}

func TestSignUpPendingConfirmationHasNoSession(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(http.StatusOK, `{
		"id": "u1", "email": "ada@example.com"
	}`)})
	adapter := newTestAdapter(t, fake)

	result, err := adapter.SignUp(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if result.User == nil || result.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.Session != nil {
		t.Fatalf("expected no session before confirmation, got %+v", result.Session)
	}
}

func TestSignInFailureWraps(t *testing.T) {
	fake := newFakeTransport(transportScript{response: jsonResponse(
		http.StatusBadRequest,
		`{"error": "invalid_grant", "error_description": "Invalid login credentials"}`,
	)})
	adapter := newTestAdapter(t, fake)

	_, err := adapter.SignIn(context.Background(), "ada@example.com", "wrong")
	if err == nil {
		t.Fatalf("expected sign-in failure")
	}
	if !core.IsBackend(err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid login credentials") {
		t.Fatalf("remote description lost: %q", err.Error())
	}
}

func TestDeleteProductSendsFilteredDelete(t *testing.T) {
	fake := newFakeTransport(transportScript{response: core.TransportResponse{StatusCode: http.StatusNoContent}})
	adapter := newTestAdapter(t, fake)

	if err := adapter.DeleteProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	req := fake.lastRequest(t)
	if req.Method != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", req.Method)
	}
	if req.Query["id"] != "eq.p1" {
		t.Fatalf("id filter missing: %+v", req.Query)
	}
}

func TestHandleWebhookIsLogOnly(t *testing.T) {
	fake := newFakeTransport()
	adapter := newTestAdapter(t, fake)

	if err := adapter.HandleWebhook(context.Background(), core.WebhookEvent{Type: "product.created"}); err != nil {
		t.Fatalf("webhook should be log-only, got %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.requests) != 0 {
		t.Fatalf("webhook should not hit the transport, saw %d requests", len(fake.requests))
	}
}
