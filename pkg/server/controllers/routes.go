/* Copyright 2025 Shelfsync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/app"
	mw "github.com/shelfsync/shelfsync/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	WebRoutes   []Route
	APIRoutes   []Route
}

// NewWebRoutes returns a new web routes
func NewWebRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/health", c.Health.Index, false},
	}
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		// plugin
		{"POST", "/plugin/import", c.Plugin.Import, true},
		{"POST", "/plugin/device", c.Plugin.RegisterDevice, true},

		// dashboard
		{"GET", "/books", c.Books.Index, true},
		{"GET", "/books/{bookID}", c.Books.Show, true},
		{"GET", "/books/{bookID}/annotations", c.Books.Annotations, true},
		{"PUT", "/books/{bookID}/reference-pages", c.Books.UpdateReferencePages, true},
		{"PATCH", "/annotations/{annotationID}/restore", c.Annotations.Restore, true},
		{"DELETE", "/annotations/{annotationID}", c.Annotations.Delete, true},
		{"GET", "/devices", c.Devices.Index, true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)
	registerRoutes(router, mw.WebMw, app, rc.WebRoutes)

	notFound := http.HandlerFunc(mw.NotFound)
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw.DoError(w, "method not allowed", nil, http.StatusMethodNotAllowed)
	})

	// subrouters resolve their own mismatches before the root router sees them
	for _, r := range []*mux.Router{router, apiRouter} {
		r.NotFoundHandler = notFound
		r.MethodNotAllowedHandler = methodNotAllowed
	}

	return mw.Global(router), nil
}
