// Package router resolves API Gateway method and path pairs to catalog
// operations.
package router

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Op names a catalog operation.
type Op string

const (
	OpQuery     Op = "query"
	OpCreate    Op = "create"
	OpGet       Op = "get"
	OpUpdate    Op = "update"
	OpTranslate Op = "translate"
	OpPreflight Op = "preflight"

	// OpMissingCategory is GET /products: a query without its category.
	OpMissingCategory Op = "missing_category"
)

var (
	// ErrNoRoute means the path matches no resource.
	ErrNoRoute = errors.New("route not found")
	// ErrMethodNotAllowed means the resource exists but not for this method.
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Route is a resolved request.
type Route struct {
	Op        Op
	Category  string
	ProductID string
}

// resource shapes, by number of path segments after "products".
const (
	collection  = iota // /products
	category           // /products/{category}
	product            // /products/{category}/{productId}
	translation        // /products/{category}/{productId}/translation
)

// methods lists the operations each resource accepts.
var methods = map[int]map[string]Op{
	collection: {
		http.MethodGet:  OpMissingCategory,
		http.MethodPost: OpCreate,
	},
	category: {
		http.MethodGet: OpQuery,
	},
	product: {
		http.MethodGet: OpGet,
		http.MethodPut: OpUpdate,
	},
	translation: {
		http.MethodGet: OpTranslate,
	},
}

// Allowed returns the methods a path accepts, for the Allow header.
func Allowed(path string) []string {
	shape, _, err := parse(path)
	if err != nil {
		return nil
	}
	allowed := []string{http.MethodOptions}
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut} {
		if _, ok := methods[shape][m]; ok {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// Resolve maps method and path to a Route. Path segments are unescaped,
// so "/products/home%20garden" addresses the "home garden" category.
func Resolve(method, path string) (Route, error) {
	shape, segs, err := parse(path)
	if err != nil {
		return Route{}, err
	}

	var op Op
	if method == http.MethodOptions {
		op = OpPreflight
	} else {
		var ok bool
		if op, ok = methods[shape][strings.ToUpper(method)]; !ok {
			return Route{}, ErrMethodNotAllowed
		}
	}

	route := Route{Op: op}
	if shape >= category {
		route.Category = segs[0]
	}
	if shape >= product {
		route.ProductID = segs[1]
	}
	return route, nil
}

// parse splits path into its resource shape and the unescaped segments
// after "products".
func parse(path string) (int, []string, error) {
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "products" {
		return 0, nil, ErrNoRoute
	}
	segs := parts[1:]
	if len(segs) > translation || (len(segs) == translation && segs[2] != "translation") {
		return 0, nil, ErrNoRoute
	}

	out := make([]string, len(segs))
	for i, s := range segs {
		u, err := url.PathUnescape(s)
		if err != nil || u == "" {
			return 0, nil, ErrNoRoute
		}
		out[i] = u
	}
	return len(segs), out, nil
}
