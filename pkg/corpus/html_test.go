package corpus

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRuby(t *testing.T) {
	in := []byte(`<p><ruby>漢字<rp>(</rp><RT class="x">かんじ</RT><rp>)</rp></ruby>です</p>`)
	assert.Equal(t, `<p><ruby>漢字</ruby>です</p>`, string(SanitizeRuby(in)))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("雨です。晴れ！本当？ok. tail")
	assert.Equal(t, []string{"雨です。", "晴れ！", "本当？", "ok.", " tail"}, got)
}

func TestExtractHTML(t *testing.T) {
	body, err := os.ReadFile("testdata/article.html")
	require.NoError(t, err)

	u, _ := url.Parse("http://localhost/walk")
	article, err := ExtractHTML(body, u)
	require.NoError(t, err)

	assert.Contains(t, article.Title, "春の散歩道")
	require.NotEmpty(t, article.Sentences)
	joined := strings.Join(article.Sentences, "\n")
	assert.Contains(t, joined, "桜の花がちょうど満開で")
	assert.NotContains(t, joined, "さくら")
	for _, s := range article.Sentences {
		assert.Equal(t, strings.TrimSpace(s), s)
		assert.NotEmpty(t, s)
	}

	var buf bytes.Buffer
	require.NoError(t, article.WriteLines(&buf))
	assert.Equal(t, len(article.Sentences), strings.Count(buf.String(), "\n"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Contains(t, string(body), "hi")

	_, err = Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
