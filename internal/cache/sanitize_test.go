package cache

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHeaders(t *testing.T) {
	in := http.Header{
		"Content-Type":                 {"application/json; charset=utf-8"},
		"Authorization":                {"Bearer secret"},
		"Set-Cookie":                   {"session=abc"},
		"Www-Authenticate":             {"Bearer"},
		"Access-Control-Allow-Origin":  {"*"},
		"Access-Control-Allow-Headers": {"authorization"},
		"Etag":                         {`"v1"`},
		"X-Rate-Limit-Remaining":       {"149"},
	}

	out := SanitizeHeaders(in)

	assert.Equal(t, "application/json; charset=utf-8", out.Get("Content-Type"))
	assert.Equal(t, `"v1"`, out.Get("Etag"))
	assert.Equal(t, "149", out.Get("X-Rate-Limit-Remaining"))

	assert.Empty(t, out.Get("Authorization"))
	assert.Empty(t, out.Get("Set-Cookie"))
	assert.Empty(t, out.Get("Www-Authenticate"))
	assert.Empty(t, out.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, out.Get("Access-Control-Allow-Headers"))
}

func TestSanitizeHeaders_DoesNotMutateInput(t *testing.T) {
	in := http.Header{"Authorization": {"Bearer secret"}, "Etag": {`"v1"`}}

	out := SanitizeHeaders(in)
	out.Set("Etag", `"v2"`)

	assert.Equal(t, "Bearer secret", in.Get("Authorization"))
	assert.Equal(t, `"v1"`, in.Get("Etag"))
}

func TestSanitizeHeaders_CaseInsensitive(t *testing.T) {
	in := http.Header{}
	in["authorization"] = []string{"Bearer secret"}
	in["set-cookie"] = []string{"a=b"}

	out := SanitizeHeaders(in)

	assert.NotContains(t, out, "Authorization")
	assert.NotContains(t, out, "authorization")
	assert.NotContains(t, out, "Set-Cookie")
}
