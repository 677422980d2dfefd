package llm

import (
	"context"
	"errors"
	"testing"

	"ai-supply-planner/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockGenerator struct {
	resp  ContentResponse
	err   error
	calls []Request
}

func (m *mockGenerator) Generate(ctx context.Context, req Request) (ContentResponse, error) {
	m.calls = append(m.calls, req)
	return m.resp, m.err
}

type row struct {
	Shop       string `json:"shop"`
	WebShopURL string `json:"webShopUrl"`
}

var testSchema = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

func TestStructuredJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("Decodes and forwards schema", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{
			Content: `["a","b"]`,
			Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 4, Model: "m"},
		}}
		var out []string
		meta, err := NewGateway(gen).StructuredJSON(ctx, "Inventory", Request{Prompt: "p", Schema: testSchema, Search: true}, &out)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, out)
		assert.Equal(t, "Inventory", meta.AgentName)
		assert.Equal(t, 10, meta.Usage.PromptTokens)

		require.Len(t, gen.calls, 1)
		assert.Same(t, testSchema, gen.calls[0].Schema)
		assert.False(t, gen.calls[0].Search, "schema mode must not enable search")
	})

	t.Run("Requires a schema", func(t *testing.T) {
		gen := &mockGenerator{}
		var out []string
		_, err := NewGateway(gen).StructuredJSON(ctx, "Inventory", Request{Prompt: "p"}, &out)
		require.Error(t, err)
		assert.Empty(t, gen.calls)
	})

	t.Run("Malformed", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{Content: "this is not json"}}
		var out []string
		_, err := NewGateway(gen).StructuredJSON(ctx, "Inventory", Request{Schema: testSchema}, &out)
		require.Error(t, err)
		assert.Equal(t, KindMalformedResponse, KindOf(err))
		assert.Contains(t, err.Error(), "JSON")
	})

	t.Run("Empty", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{Content: "   \n"}}
		var out []string
		_, err := NewGateway(gen).StructuredJSON(ctx, "Inventory", Request{Schema: testSchema}, &out)
		require.Error(t, err)
		assert.Equal(t, KindEmptyResponse, KindOf(err))
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestSearchJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("Strips fences and enables search", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{
			Content:       "```json\n[{\"shop\":\"Konzum\",\"webShopUrl\":\"https://www.konzum.hr/\"}]\n```",
			SearchQueries: []string{"konzum web shop"},
		}}
		var out []row
		meta, err := NewGateway(gen).SearchJSON(ctx, "WebShops", Request{Prompt: "p", Schema: testSchema}, &out)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "https://www.konzum.hr/", out[0].WebShopURL)
		assert.Equal(t, []string{"konzum web shop"}, meta.SearchQueries)

		require.Len(t, gen.calls, 1)
		assert.True(t, gen.calls[0].Search)
		assert.Nil(t, gen.calls[0].Schema, "search mode cannot carry a schema")
	})

	t.Run("Bare JSON is accepted", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{Content: `[{"shop":"dm","webShopUrl":""}]`}}
		var out []row
		_, err := NewGateway(gen).SearchJSON(ctx, "WebShops", Request{}, &out)
		require.NoError(t, err)
		assert.Equal(t, []row{{Shop: "dm"}}, out)
	})

	t.Run("Only fences is empty", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{Content: "```json\n```"}}
		var out []row
		_, err := NewGateway(gen).SearchJSON(ctx, "WebShops", Request{}, &out)
		assert.Equal(t, KindEmptyResponse, KindOf(err))
	})

	t.Run("Prose around JSON is malformed", func(t *testing.T) {
		gen := &mockGenerator{resp: ContentResponse{Content: "Evo rezultata: [{\"shop\":\"dm\"}]"}}
		var out []row
		_, err := NewGateway(gen).SearchJSON(ctx, "WebShops", Request{}, &out)
		assert.Equal(t, KindMalformedResponse, KindOf(err))
	})
}

func TestTransportClassification(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		err     error
		invalid bool
	}{
		{"typed 400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad schema"}, true},
		{"typed 403", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, false},
		{"text 400", errors.New("googleapi: Error 400: request contains an invalid argument"), true},
		{"text INVALID_ARGUMENT", errors.New("rpc error: code = INVALID_ARGUMENT"), true},
		{"network", errors.New("dial tcp: connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockGenerator{err: tc.err}
			var out []row
			meta, err := NewGateway(gen).SearchJSON(ctx, "Offers", Request{}, &out)
			require.Error(t, err)
			assert.Equal(t, KindTransport, KindOf(err))
			assert.Equal(t, tc.invalid, IsInvalidArgument(err))
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, "Offers", meta.AgentName)
		})
	}
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsInvalidArgument(errors.New("400")))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `[1]`, StripCodeFences("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, StripCodeFences("  ```\n[1]```  "))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}
