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

package flagon

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flagon-dev/flagon/httperr"
)

// AppLifecycleSuite exercises request lifecycle scenarios that share a
// configured app.
type AppLifecycleSuite struct {
	suite.Suite
	app *App
}

func (s *AppLifecycleSuite) SetupTest() {
	app, err := New(
		WithServiceName("suite"),
		WithVersion("1.0.0"),
	)
	s.Require().NoError(err)
	s.app = app
}

func (s *AppLifecycleSuite) get(path string) *http.Response {
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *AppLifecycleSuite) TestHandlerAndHooksShareNamespace() {
	s.app.BeforeRequest(func(c *Context) (any, error) {
		c.Set("user", "alice")
		return nil, nil
	})
	s.app.GET("/whoami", "whoami", func(c *Context) (any, error) {
		return c.MustGet("user").(string), nil
	})

	var teardownSaw string
	s.app.TeardownRequest(func(c *Context, err error) {
		teardownSaw, _ = c.MustGet("user").(string)
	})

	resp := s.get("/whoami")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("alice", teardownSaw, "the namespace lives until teardown")
}

func (s *AppLifecycleSuite) TestTeardownSeesFinalResponse() {
	s.app.GET("/page", "page", func(c *Context) (any, error) {
		return Text(http.StatusAccepted, "done"), nil
	})

	var status int
	s.app.TeardownRequest(func(c *Context, err error) {
		if r := c.Response(); r != nil {
			status = r.Status()
		}
	})

	s.get("/page")
	s.Equal(http.StatusAccepted, status)
}

func (s *AppLifecycleSuite) TestErrorHandlerChainPrecedence() {
	s.app.GET("/classified", "classified", func(c *Context) (any, error) {
		return nil, httperr.Forbidden("")
	})
	s.app.OnError(ErrorAs(func(c *Context, err *httperr.Error) (any, error) {
		return Text(err.Code, "typed handler"), nil
	}))
	s.app.OnStatus(http.StatusForbidden, func(c *Context, err error) (any, error) {
		return Text(http.StatusForbidden, "status handler"), nil
	})

	// Status-classified failures resolve through status handlers first;
	// the typed matcher never sees them.
	resp := s.get("/classified")
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *AppLifecycleSuite) TestRequestsAreIndependent() {
	s.app.GET("/count", "count", func(c *Context) (any, error) {
		if _, ok := c.Get("n"); ok {
			return nil, httperr.InternalServerError("namespace leaked")
		}
		c.Set("n", 1)
		return "fresh", nil
	})

	for range 5 {
		resp := s.get("/count")
		s.Equal(http.StatusOK, resp.StatusCode)
	}
}

func TestAppLifecycleSuite(t *testing.T) {
	suite.Run(t, new(AppLifecycleSuite))
}
