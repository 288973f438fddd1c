package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchText_ArticleContainer(t *testing.T) {
	srv := servePage(t, `<html><body>
		<div id="header">nav junk</div>
		<div id="newsct_article">The festival <b>runs</b> October 3 to 5.
			<script>tracker()</script>
		</div>
	</body></html>`)

	got := NewPageFetcher().FetchText(context.Background(), srv.URL)
	if !strings.Contains(got, "festival runs October 3 to 5") {
		t.Errorf("FetchText() = %q, want article text", got)
	}
	if strings.Contains(got, "tracker") || strings.Contains(got, "nav junk") {
		t.Errorf("FetchText() = %q, leaked script or chrome text", got)
	}
}

func TestFetchText_FallbackSelectors(t *testing.T) {
	srv := servePage(t, `<html><body>
		<article>Concert announced for next month.</article>
	</body></html>`)

	got := NewPageFetcher().FetchText(context.Background(), srv.URL)
	if !strings.Contains(got, "Concert announced") {
		t.Errorf("FetchText() = %q, want article element text", got)
	}
}

func TestFetchText_EmptyPage(t *testing.T) {
	srv := servePage(t, `<html><body></body></html>`)

	if got := NewPageFetcher().FetchText(context.Background(), srv.URL); got != placeholderNoBody {
		t.Errorf("FetchText() = %q, want %q", got, placeholderNoBody)
	}
}

func TestFetchText_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	if got := NewPageFetcher().FetchText(context.Background(), srv.URL); got != placeholderFetchFailed {
		t.Errorf("FetchText() = %q, want %q", got, placeholderFetchFailed)
	}
}
