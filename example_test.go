// Copyright 2025 The Flagon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flagon_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/flagon-dev/flagon"
	"github.com/flagon-dev/flagon/httperr"
)

// Example shows the smallest useful app: one route, one request.
func Example() {
	app := flagon.MustNew()
	app.GET("/hello/<name>", "greet", func(c *flagon.Context) (any, error) {
		return "hi " + c.Param("name").(string), nil
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/hello/world", nil))
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Println(resp.StatusCode, string(body))
	// Output: 200 hi world
}

// Example_hooks shows a before-request hook short-circuiting the handler.
func Example_hooks() {
	app := flagon.MustNew()
	app.GET("/secret", "secret", func(c *flagon.Context) (any, error) {
		return "the secret", nil
	})
	app.BeforeRequest(func(c *flagon.Context) (any, error) {
		if c.Request.Header.Get("X-Token") != "open-sesame" {
			return nil, httperr.Unauthorized("")
		}
		return nil, nil
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/secret", nil))
	defer resp.Body.Close()
	fmt.Println(resp.StatusCode)
	// Output: 401
}

// Example_blueprint groups routes under a shared prefix and namespace.
func Example_blueprint() {
	shop := flagon.MustNewBlueprint("shop", flagon.WithURLPrefix("/shop"))
	shop.GET("/item/<int:id>", "item", func(c *flagon.Context) (any, error) {
		return fmt.Sprintf("item %d from %s", c.Param("id"), c.Blueprint()), nil
	})

	app := flagon.MustNew()
	if err := app.RegisterBlueprint(shop); err != nil {
		panic(err)
	}

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/shop/item/7", nil))
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Println(string(body))
	// Output: item 7 from shop
}

// ExampleApp_URLFor builds URLs back from endpoint names.
func ExampleApp_URLFor() {
	app := flagon.MustNew()
	app.GET("/user/<int:id>/posts", "posts", func(c *flagon.Context) (any, error) {
		return "posts", nil
	})

	url, _ := app.URLFor("posts", map[string]any{"id": 42})
	fmt.Println(url)
	// Output: /user/42/posts
}
