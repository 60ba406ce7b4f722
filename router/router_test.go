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

package router

import (
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagon-dev/flagon/httperr"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates router with defaults", func(t *testing.T) {
		t.Parallel()

		r, err := New()
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.False(t, r.strictOrder)
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		r, err := New(WithStrictOrder())
		require.NoError(t, err)
		assert.True(t, r.strictOrder)
	})

	t.Run("option failure surfaces", func(t *testing.T) {
		t.Parallel()

		_, err := New(WithConverter("", StringConverter))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConverterName)
	})
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	t.Run("returns router on success", func(t *testing.T) {
		t.Parallel()

		assert.NotNil(t, MustNew())
	})

	t.Run("panics on option failure", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			MustNew(WithConverter("bad", nil))
		})
	})
}

func TestAdd(t *testing.T) {
	t.Parallel()

	t.Run("wildcard-free rule is static", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		rule, err := r.Add("/health", "health")
		require.NoError(t, err)
		assert.True(t, rule.IsStatic())
		assert.Equal(t, "/health", rule.Pattern())
		assert.Equal(t, "health", rule.Endpoint())
	})

	t.Run("wildcard rule is dynamic", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		rule, err := r.Add("/users/<name>", "user")
		require.NoError(t, err)
		assert.False(t, rule.IsStatic())
	})

	t.Run("methods default to GET and normalize to upper case", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		rule, err := r.Add("/a", "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"GET"}, rule.Methods())

		rule, err = r.Add("/b", "b", WithMethods("post", "get", "POST"))
		require.NoError(t, err)
		assert.Equal(t, []string{"GET", "POST"}, rule.Methods())
	})

	t.Run("unknown converter fails at setup", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/users/<uuid:id>", "user")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownConverter)
		assert.Contains(t, err.Error(), "/users/<uuid:id>")
	})

	t.Run("duplicate wildcard names fail to compile", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/pair/<a>/<a>", "pair")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRouteSyntax)
		assert.Contains(t, err.Error(), "/pair/<a>/<a>")
	})

	t.Run("malformed wildcard stays literal", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		rule, err := r.Add("/foo/<123>", "odd")
		require.NoError(t, err)
		assert.True(t, rule.IsStatic())

		m, err := r.Match("/foo/<123>", "GET")
		require.NoError(t, err)
		assert.Equal(t, "odd", m.Endpoint)
	})

	t.Run("re-adding a static path and method replaces the rule", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/dup", "first")
		require.NoError(t, err)
		_, err = r.Add("/dup", "second")
		require.NoError(t, err)

		m, err := r.Match("/dup", "GET")
		require.NoError(t, err)
		assert.Equal(t, "second", m.Endpoint)
	})
}

func TestMatchStaticPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("static beats dynamic regardless of registration order", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/<name>", "dynamic")
		require.NoError(t, err)
		_, err = r.Add("/foo", "static")
		require.NoError(t, err)

		m, err := r.Match("/foo", "GET")
		require.NoError(t, err)
		assert.Equal(t, "static", m.Endpoint)
	})

	t.Run("strict order keeps registration order", func(t *testing.T) {
		t.Parallel()

		r := MustNew(WithStrictOrder())
		_, err := r.Add("/<name>", "dynamic")
		require.NoError(t, err)
		_, err = r.Add("/foo", "static")
		require.NoError(t, err)

		m, err := r.Match("/foo", "GET")
		require.NoError(t, err)
		assert.Equal(t, "dynamic", m.Endpoint)

		m, err = r.Match("/bar", "GET")
		require.NoError(t, err)
		assert.Equal(t, "dynamic", m.Endpoint)
	})

	t.Run("strict order still matches literal rules", func(t *testing.T) {
		t.Parallel()

		r := MustNew(WithStrictOrder())
		_, err := r.Add("/exact", "exact")
		require.NoError(t, err)

		m, err := r.Match("/exact", "GET")
		require.NoError(t, err)
		assert.Equal(t, "exact", m.Endpoint)
		assert.Empty(t, m.Params)
	})
}

func TestMatchFirstWins(t *testing.T) {
	t.Parallel()

	r := MustNew()
	_, err := r.Add("/overlap/<first>", "first")
	require.NoError(t, err)
	_, err = r.Add("/overlap/<second>", "second")
	require.NoError(t, err)

	m, err := r.Match("/overlap/x", "GET")
	require.NoError(t, err)
	assert.Equal(t, "first", m.Endpoint)
	assert.Equal(t, "x", m.Params["first"])
}

func TestMatchTypeCoercion(t *testing.T) {
	t.Parallel()

	t.Run("int converter yields native int", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/bar/<int:n>", "bar")
		require.NoError(t, err)

		m, err := r.Match("/bar/20", "GET")
		require.NoError(t, err)
		assert.Equal(t, 20, m.Params["n"])
	})

	t.Run("int converter accepts negative values", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/bar/<int:n>", "bar")
		require.NoError(t, err)

		m, err := r.Match("/bar/-7", "GET")
		require.NoError(t, err)
		assert.Equal(t, -7, m.Params["n"])
	})

	t.Run("float converter yields float64", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/price/<float:amount>", "price")
		require.NoError(t, err)

		m, err := r.Match("/price/1.25", "GET")
		require.NoError(t, err)
		assert.Equal(t, 1.25, m.Params["amount"])
	})

	t.Run("string converter keeps raw text", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/users/<name>", "user")
		require.NoError(t, err)

		m, err := r.Match("/users/20", "GET")
		require.NoError(t, err)
		assert.Equal(t, "20", m.Params["name"])
	})

	t.Run("int overflow resolves to 400", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/bar/<int:n>", "bar")
		require.NoError(t, err)

		_, err = r.Match("/bar/99999999999999999999999", "GET")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperr.StatusCode(err))
	})

	t.Run("float with stray dots resolves to 400", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/price/<float:amount>", "price")
		require.NoError(t, err)

		_, err = r.Match("/price/1.2.3", "GET")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperr.StatusCode(err))
	})
}

func TestMatchDefaults(t *testing.T) {
	t.Parallel()

	t.Run("defaults fill absent keys only", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/<name>", "named", WithDefaults(map[string]any{
			"foo":  1234,
			"name": "bar",
		}))
		require.NoError(t, err)

		m, err := r.Match("/foo", "GET")
		require.NoError(t, err)
		assert.Equal(t, "foo", m.Params["name"])
		assert.Equal(t, 1234, m.Params["foo"])
	})

	t.Run("static rule params come from defaults", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/fixed", "fixed", WithDefaults(map[string]any{"page": 1}))
		require.NoError(t, err)

		m, err := r.Match("/fixed", "GET")
		require.NoError(t, err)
		assert.Equal(t, 1, m.Params["page"])
	})
}

func TestMatchNotFoundVersusMethodNotAllowed(t *testing.T) {
	t.Parallel()

	t.Run("wrong method on existing path is 405 with allowed set", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/foo", "foo")
		require.NoError(t, err)

		_, err = r.Match("/foo", "POST")
		require.Error(t, err)
		he := httperr.From(err)
		require.NotNil(t, he)
		assert.Equal(t, http.StatusMethodNotAllowed, he.Code)
		assert.Equal(t, []string{"GET"}, he.Allowed)
	})

	t.Run("unknown path is 404 naming the path", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/foo", "foo")
		require.NoError(t, err)

		_, err = r.Match("/nope", "GET")
		require.Error(t, err)
		he := httperr.From(err)
		require.NotNil(t, he)
		assert.Equal(t, http.StatusNotFound, he.Code)
		assert.Contains(t, he.Description, "/nope")
	})

	t.Run("405 carries the union of methods across matching rules", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/u/<a>", "get-u", WithMethods("GET"))
		require.NoError(t, err)
		_, err = r.Add("/u/<b>", "post-u", WithMethods("POST"))
		require.NoError(t, err)

		_, err = r.Match("/u/1", "PUT")
		require.Error(t, err)
		he := httperr.From(err)
		require.NotNil(t, he)
		assert.Equal(t, http.StatusMethodNotAllowed, he.Code)
		assert.Equal(t, []string{"GET", "POST"}, he.Allowed)
	})

	t.Run("static method miss can still match a dynamic rule", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/foo", "static-get", WithMethods("GET"))
		require.NoError(t, err)
		_, err = r.Add("/<anything>", "dynamic-post", WithMethods("POST"))
		require.NoError(t, err)

		m, err := r.Match("/foo", "POST")
		require.NoError(t, err)
		assert.Equal(t, "dynamic-post", m.Endpoint)
	})

	t.Run("later dynamic rule may still permit the method", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/v/<a>", "only-get", WithMethods("GET"))
		require.NoError(t, err)
		_, err = r.Add("/v/<b>", "only-post", WithMethods("POST"))
		require.NoError(t, err)

		m, err := r.Match("/v/1", "POST")
		require.NoError(t, err)
		assert.Equal(t, "only-post", m.Endpoint)
	})
}

func TestMatchPathConverter(t *testing.T) {
	t.Parallel()

	t.Run("spans segments including slashes", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/path/<path:p>", "deep")
		require.NoError(t, err)

		m, err := r.Match("/path/foo/bar/xxx", "GET")
		require.NoError(t, err)
		assert.Equal(t, "foo/bar/xxx", m.Params["p"])
	})

	t.Run("non-greedy capture leaves trailing literal anchored", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/files/<path:p>/meta", "meta")
		require.NoError(t, err)

		m, err := r.Match("/files/a/b/meta", "GET")
		require.NoError(t, err)
		assert.Equal(t, "a/b", m.Params["p"])
	})
}

func TestMatchMethodCase(t *testing.T) {
	t.Parallel()

	r := MustNew()
	_, err := r.Add("/m", "m", WithMethods("GET"))
	require.NoError(t, err)

	m, err := r.Match("/m", "get")
	require.NoError(t, err)
	assert.Equal(t, "m", m.Endpoint)
}

func TestRegisterConverter(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		assert.ErrorIs(t, r.RegisterConverter("", StringConverter), ErrConverterName)
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		assert.ErrorIs(t, r.RegisterConverter("x", nil), ErrNilConverter)
	})

	t.Run("custom converter constrains and decodes", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		err := r.RegisterConverter("even", func() Converter {
			return Converter{
				Pattern: `\d+`,
				Decode: func(raw string) (any, error) {
					v, err := strconv.Atoi(raw)
					if err != nil {
						return nil, err
					}
					if v%2 != 0 {
						return nil, errors.New("odd value")
					}
					return v, nil
				},
			}
		})
		require.NoError(t, err)

		_, err = r.Add("/even/<even:n>", "even")
		require.NoError(t, err)

		m, err := r.Match("/even/4", "GET")
		require.NoError(t, err)
		assert.Equal(t, 4, m.Params["n"])

		_, err = r.Match("/even/3", "GET")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperr.StatusCode(err))
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("fills wildcards from params", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/hello/<name>", "greet")
		require.NoError(t, err)

		got, err := r.Build("greet", map[string]any{"name": "world"})
		require.NoError(t, err)
		assert.Equal(t, "/hello/world", got)
	})

	t.Run("int encoder accepts numeric and string forms", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/num/<int:n>", "num")
		require.NoError(t, err)

		got, err := r.Build("num", map[string]any{"n": 42})
		require.NoError(t, err)
		assert.Equal(t, "/num/42", got)

		got, err = r.Build("num", map[string]any{"n": "17"})
		require.NoError(t, err)
		assert.Equal(t, "/num/17", got)
	})

	t.Run("defaults cover absent params", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/hello/<name>", "greet", WithDefaults(map[string]any{"name": "bar"}))
		require.NoError(t, err)

		got, err := r.Build("greet", nil)
		require.NoError(t, err)
		assert.Equal(t, "/hello/bar", got)
	})

	t.Run("missing parameter fails", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/hello/<name>", "greet")
		require.NoError(t, err)

		_, err = r.Build("greet", nil)
		assert.ErrorIs(t, err, ErrMissingParameter)
	})

	t.Run("unknown endpoint fails", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Build("ghost", nil)
		assert.ErrorIs(t, err, ErrUnknownEndpoint)
	})

	t.Run("extra params become the query string", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/hello/<name>", "greet")
		require.NoError(t, err)

		got, err := r.Build("greet", map[string]any{"name": "world", "page": 2, "q": "x"})
		require.NoError(t, err)
		assert.Equal(t, "/hello/world?page=2&q=x", got)
	})

	t.Run("path converter round-trips slashes", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/files/<path:p>", "files")
		require.NoError(t, err)

		got, err := r.Build("files", map[string]any{"p": "a/b/c"})
		require.NoError(t, err)
		assert.Equal(t, "/files/a/b/c", got)
	})

	t.Run("unencodable value fails", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		_, err := r.Add("/num/<int:n>", "num")
		require.NoError(t, err)

		_, err = r.Build("num", map[string]any{"n": "not-a-number"})
		assert.ErrorIs(t, err, ErrEncodeParameter)
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	r := MustNew()
	_, err := r.Add("/a", "a")
	require.NoError(t, err)
	_, err = r.Add("/b/<x>", "b")
	require.NoError(t, err)

	rules := r.Rules()
	assert.Len(t, rules, 2)
}
