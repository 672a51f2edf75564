package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chinquiz/internal/factory"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/identity"
	"github.com/mcoot/chinquiz/internal/testutil"
	"github.com/mcoot/chinquiz/internal/web"
	"github.com/mcoot/chinquiz/internal/web/middleware"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	router := web.NewRouter(web.RouterConfig{
		Logger:             testutil.NopLogger(),
		IdentityService:    app.IdentityService,
		QuizController:     app.QuizController,
		LeaderboardService: app.LeaderboardService,
		Clock:              app.MockClock,
		StaticDir:          "", // No static files in tests
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// value returns a cookie's value, or "" if it is not set
func (j *cookieJar) value(name string) string {
	if cookie, ok := j.cookies[name]; ok {
		return cookie.Value
	}
	return ""
}

// Helper functions for common test operations

// identity decodes the identity cookie the browser holds
func (ts *webTestServer) identity() model.PlayerIdentity {
	ts.t.Helper()
	player, err := identity.Decode(ts.cookies.value(middleware.IdentityCookieName))
	require.NoError(ts.t, err)
	return player
}

// startQuiz enters a name on the start screen and returns the quiz page
func (ts *webTestServer) startQuiz(name string) *goquery.Document {
	ts.t.Helper()
	rr := ts.post("/start", url.Values{"name": {name}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after starting")
	require.Equal(ts.t, "/play", rr.Header().Get("Location"))
	require.NotEmpty(ts.t, ts.cookies.value(middleware.IdentityCookieName), "Expected identity cookie to be set")
	require.NotEmpty(ts.t, ts.cookies.value(middleware.SessionCookieName), "Expected session cookie to be set")
	return ts.page(ts.followRedirect(rr))
}

// guess submits a guess and returns the quiz page it redirects to
func (ts *webTestServer) guess(text string) *goquery.Document {
	ts.t.Helper()
	rr := ts.post("/play/guess", url.Values{"guess": {text}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after guessing")
	return ts.page(ts.followRedirect(rr))
}

// page asserts a 200 response and parses it
func (ts *webTestServer) page(rr *httptest.ResponseRecorder) *goquery.Document {
	ts.t.Helper()
	require.Equal(ts.t, http.StatusOK, rr.Code)
	return parseHTML(rr.Body)
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
