package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/themizzi/demoshop-e2e/internal/demoshop"
	"github.com/themizzi/demoshop-e2e/internal/models"
	"github.com/themizzi/demoshop-e2e/internal/session"
	"github.com/themizzi/demoshop-e2e/internal/shopstub"
)

// createShopDeps points the account commands at an in-process shop stub
func createShopDeps(t *testing.T, password string) (ShopDependencies, *bytes.Buffer) {
	t.Helper()
	stub, err := shopstub.New(shopstub.NewStore(map[string]string{"demo_webshop@test.com": "123123"}))
	if err != nil {
		t.Fatalf("Failed to create stub: %v", err)
	}
	ts := httptest.NewServer(stub)
	t.Cleanup(ts.Close)

	out := &bytes.Buffer{}
	return ShopDependencies{
		Client:   demoshop.NewClient(session.New(ts.URL, session.WithoutRedirects())),
		Email:    "demo_webshop@test.com",
		Password: password,
		Out:      out,
	}, out
}

func TestRunLogin(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "valid account", password: "123123"},
		{name: "wrong password", password: "nope", wantErr: demoshop.ErrMissingAuthCookie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, out := createShopDeps(t, tt.password)

			err := RunLogin(context.Background(), deps)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.TrimSpace(out.String()) != deps.Client.AuthCookie {
				t.Errorf("expected printed token %q, got %q", deps.Client.AuthCookie, out.String())
			}
		})
	}
}

func TestRunCartAdd(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantNames []string
	}{
		{name: "books", args: []string{"13", "22", "45"}, wantNames: []string{"Computing and Internet", "Health Book", "Fiction"}},
		{name: "no ids", args: nil, wantErr: true},
		{name: "not a number", args: []string{"abc"}, wantErr: true},
		{name: "product with options", args: []string{"2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := createShopDeps(t, "123123")
			ctx := context.Background()

			err := RunCartAdd(ctx, deps, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			cart, err := deps.Client.Cart(ctx)
			if err != nil {
				t.Fatalf("failed to read cart: %v", err)
			}
			got := cart.Names()
			if strings.Join(got, ",") != strings.Join(tt.wantNames, ",") {
				t.Errorf("expected cart %v, got %v", tt.wantNames, got)
			}
		})
	}
}

func TestRunCartAdd_RejectedProduct(t *testing.T) {
	deps, _ := createShopDeps(t, "123123")

	err := RunCartAdd(context.Background(), deps, []string{"2"})
	if !errors.Is(err, ErrAddRejected) {
		t.Errorf("expected ErrAddRejected, got %v", err)
	}
}

func TestRunShowList(t *testing.T) {
	deps, out := createShopDeps(t, "123123")
	ctx := context.Background()

	if err := RunCartAdd(ctx, deps, []string{"13", "45"}); err != nil {
		t.Fatalf("failed to add books: %v", err)
	}

	if err := RunShowList(ctx, deps, models.ShoppingCart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, content := range []string{"PRODUCT", "Computing and Internet", "Fiction", "34.00"} {
		if !strings.Contains(out.String(), content) {
			t.Errorf("expected output to contain '%s', got:\n%s", content, out.String())
		}
	}
}

func TestRunShowList_WishlistShowsShareLink(t *testing.T) {
	deps, out := createShopDeps(t, "123123")
	ctx := context.Background()

	if _, err := deps.login(ctx); err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	if _, err := deps.Client.AddProductDetails(ctx, models.ThirdAlbum.ID, models.Wishlist, nil); err != nil {
		t.Fatalf("failed to add to wishlist: %v", err)
	}

	if err := RunShowList(ctx, deps, models.Wishlist); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, content := range []string{"3rd Album", "SHARE", "/wishlist/"} {
		if !strings.Contains(out.String(), content) {
			t.Errorf("expected output to contain '%s', got:\n%s", content, out.String())
		}
	}
}

func TestRunClear(t *testing.T) {
	tests := []struct {
		list    string
		wantErr bool
	}{
		{list: "cart"},
		{list: "wishlist"},
		{list: "compare"},
		{list: "orders", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			deps, _ := createShopDeps(t, "123123")
			ctx := context.Background()

			if err := RunCartAdd(ctx, deps, []string{"45"}); err != nil {
				t.Fatalf("failed to add book: %v", err)
			}

			err := RunClear(ctx, deps, tt.list)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.list == "cart" {
				cart, err := deps.Client.Cart(ctx)
				if err != nil {
					t.Fatalf("failed to read cart: %v", err)
				}
				if len(cart.Lines) != 0 {
					t.Errorf("expected empty cart, got %v", cart.Names())
				}
			}
		})
	}
}
