package shopgoodwill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// testClient wires a Client to an httptest server handling both the API root
// and the sign-in page.
func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(WithBaseURLs(srv.URL+"/api", srv.URL+"/signin"))
	return c, srv
}

func TestAuthenticateWithValidToken(t *testing.T) {
	var sawAuthz string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/SaveSearches/GetSaveSearches" {
			t.Fatalf("unexpected request to %s", r.URL.Path)
		}
		sawAuthz = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data": []}`)
	}))

	err := c.Authenticate(context.Background(), Credentials{AccessToken: "tok123"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if sawAuthz != "Bearer tok123" {
		t.Fatalf("token probe sent Authorization %q", sawAuthz)
	}
	if c.authz != "Bearer tok123" {
		t.Fatalf("client kept Authorization %q after token auth", c.authz)
	}
}

func TestAuthenticateDeadTokenFallsBackToLogin(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/signin":
			fmt.Fprint(w, "<html></html>")
		case "/api/SaveSearches/GetSaveSearches":
			w.WriteHeader(http.StatusUnauthorized)
		case "/api/SignIn/Login":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode login body: %v", err)
			}
			if body["username"] != "encuser" || body["password"] != "encpass" {
				t.Fatalf("login got credentials %v / %v", body["username"], body["password"])
			}
			fmt.Fprint(w, `{"accessToken": "fresh-token"}`)
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
		}
	}))

	err := c.Authenticate(context.Background(), Credentials{
		AccessToken:       "stale",
		EncryptedUsername: "encuser",
		EncryptedPassword: "encpass",
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if c.authz != "Bearer fresh-token" {
		t.Fatalf("client Authorization = %q after login", c.authz)
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/signin" {
			return
		}
		fmt.Fprintf(w, `{"message": %q}`, invalidAuthMessage)
	}))

	err := c.Authenticate(context.Background(), Credentials{Username: "u", Password: "p"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateNoCredentials(t *testing.T) {
	c := New()
	if err := c.Authenticate(context.Background(), Credentials{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate = %v, want ErrInvalidCredentials", err)
	}
}

func TestGetFavoritesParsesEndTimes(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Type") != "open" {
			t.Fatalf("favorites request missing Type=open, got %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"data": [
			{"itemId": 42, "title": "Vintage Camera", "endTime": "2025-05-01T22:09:00", "sellerId": 999, "notes": "{\"max_bid\": 50}", "watchlistId": 7},
			{"itemId": 43, "title": "Lens", "endTime": "2025-04-29T23:00:17.45", "sellerId": 998, "notes": "", "watchlistId": 8}
		]}`)
	}))

	favs, err := c.GetFavorites(context.Background())
	if err != nil {
		t.Fatalf("GetFavorites: %v", err)
	}
	if len(favs) != 2 {
		t.Fatalf("got %d favorites, want 2", len(favs))
	}
	cam := favs[42]
	if cam.Title != "Vintage Camera" || cam.SellerID != 999 || cam.WatchlistID != 7 {
		t.Fatalf("favorite 42 parsed as %+v", cam)
	}
	if want := time.Date(2025, 5, 2, 5, 9, 0, 0, time.UTC); !cam.EndTime.Equal(want) {
		t.Fatalf("favorite 42 end time = %v, want %v", cam.EndTime, want)
	}
	if want := time.Date(2025, 4, 30, 6, 0, 17, 0, time.UTC); !favs[43].EndTime.Equal(want) {
		t.Fatalf("favorite 43 end time = %v, want %v", favs[43].EndTime, want)
	}
}

func TestPlaceBidRequestBody(t *testing.T) {
	var got map[string]any
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ItemBid/PlaceBid" || r.Method != http.MethodPost {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode bid body: %v", err)
		}
		fmt.Fprint(w, `{}`)
	}))

	if err := c.PlaceBid(context.Background(), 42, 50, 999, 1); err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if got["bidAmount"] != "50.00" {
		t.Fatalf("bidAmount sent as %v, want \"50.00\"", got["bidAmount"])
	}
	if got["itemId"] != float64(42) || got["sellerId"] != float64(999) || got["quantity"] != float64(1) {
		t.Fatalf("bid body = %v", got)
	}
}

func TestSaveFavoriteNoteTruncates(t *testing.T) {
	var gotNote string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode note body: %v", err)
		}
		gotNote = body.Notes
		fmt.Fprint(w, `{}`)
	}))

	long := strings.Repeat("x", 300)
	if err := c.SaveFavoriteNote(context.Background(), 7, long); err != nil {
		t.Fatalf("SaveFavoriteNote: %v", err)
	}
	if len(gotNote) != maxNoteLength {
		t.Fatalf("note sent with %d bytes, want %d", len(gotNote), maxNoteLength)
	}
}

func TestGetQueryResultsPaginates(t *testing.T) {
	var pages []int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q map[string]any
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Fatalf("decode query: %v", err)
		}
		page := int(q["page"].(float64))
		pages = append(pages, page)

		items := ""
		if page == 1 {
			items = `{"itemId": 1, "title": "a"}, {"itemId": 2, "title": "b"}`
		} else if page == 2 {
			items = `{"itemId": 3, "title": "c"}`
		}
		fmt.Fprintf(w, `{"categoryListModel": {}, "searchResults": {"items": [%s], "itemCount": 3}}`, items)
	}))

	query := map[string]any{"searchText": "camera"}
	listings, err := c.GetQueryResults(context.Background(), query, 2)
	if err != nil {
		t.Fatalf("GetQueryResults: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("got %d listings, want 3", len(listings))
	}
	if len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Fatalf("requested pages %v, want [1 2]", pages)
	}
	if _, ok := query["page"]; ok {
		t.Fatalf("pagination fields leaked into the caller's query: %v", query)
	}
}

func TestGetQueryResultsErrorResponse(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"categoryListModel": null, "searchResults": {"items": [], "itemCount": 0}}`)
	}))

	if _, err := c.GetQueryResults(context.Background(), map[string]any{}, 0); err == nil {
		t.Fatalf("GetQueryResults succeeded on an error response")
	}
}

func TestObserverSeesEveryStatus(t *testing.T) {
	statuses := []int{503, 200}
	var i int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statuses[i])
		i++
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	var seen []int
	c := New(
		WithBaseURLs(srv.URL+"/api", srv.URL+"/signin"),
		WithObserver(func(status int, url string) { seen = append(seen, status) }),
	)

	_, err := c.GetFavorites(context.Background())
	if !IsTransient(err) {
		t.Fatalf("503 response gave err %v, want transient StatusError", err)
	}
	if _, err := c.GetFavorites(context.Background()); err != nil {
		t.Fatalf("second GetFavorites: %v", err)
	}
	if len(seen) != 2 || seen[0] != 503 || seen[1] != 200 {
		t.Fatalf("observer saw %v, want [503 200]", seen)
	}
}

func TestRequestsCarryBrowserUserAgent(t *testing.T) {
	var ua string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"data": []}`)
	}))

	if _, err := c.GetFavorites(context.Background()); err != nil {
		t.Fatalf("GetFavorites: %v", err)
	}
	if !strings.Contains(ua, "Mozilla") {
		t.Fatalf("request sent User-Agent %q", ua)
	}
}
