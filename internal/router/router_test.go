package router

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   Route
	}{
		{"GET", "/products", Route{Op: OpMissingCategory}},
		{"POST", "/products", Route{Op: OpCreate}},
		{"POST", "/products/", Route{Op: OpCreate}},
		{"GET", "/products/books", Route{Op: OpQuery, Category: "books"}},
		{"GET", "/products/home%20garden", Route{Op: OpQuery, Category: "home garden"}},
		{"GET", "/products/books/b1", Route{Op: OpGet, Category: "books", ProductID: "b1"}},
		{"PUT", "/products/books/b1", Route{Op: OpUpdate, Category: "books", ProductID: "b1"}},
		{"GET", "/products/books/b1/translation", Route{Op: OpTranslate, Category: "books", ProductID: "b1"}},
		{"OPTIONS", "/products/books/b1/translation", Route{Op: OpPreflight, Category: "books", ProductID: "b1"}},
		{"OPTIONS", "/products", Route{Op: OpPreflight}},
		{"get", "/products/books", Route{Op: OpQuery, Category: "books"}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got, err := Resolve(tt.method, tt.path)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) unexpected error: %v", tt.method, tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %+v, want %+v", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   error
	}{
		// Unknown resources
		{"GET", "/", ErrNoRoute},
		{"GET", "/items/books", ErrNoRoute},
		{"GET", "/products/books/b1/reviews", ErrNoRoute},
		{"GET", "/products/books/b1/translation/es", ErrNoRoute},
		{"GET", "/products/books//b1", ErrNoRoute},
		{"GET", "/products/%zz", ErrNoRoute},
		// Known resources, wrong method
		{"DELETE", "/products/books/b1", ErrMethodNotAllowed},
		{"POST", "/products/books", ErrMethodNotAllowed},
		{"PUT", "/products", ErrMethodNotAllowed},
		{"POST", "/products/books/b1/translation", ErrMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			_, err := Resolve(tt.method, tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Resolve(%q, %q) error = %v, want %v", tt.method, tt.path, err, tt.want)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/products", []string{"OPTIONS", "GET", "POST"}},
		{"/products/books", []string{"OPTIONS", "GET"}},
		{"/products/books/b1", []string{"OPTIONS", "GET", "PUT"}},
		{"/nowhere", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Allowed(tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Allowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
