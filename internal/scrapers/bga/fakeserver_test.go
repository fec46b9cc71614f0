package bga

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// fakeBGA mimics the handful of BGA endpoints the client talks to, including the
// parts that make scraping it annoying: the request token must match, it rotates,
// and data endpoints only answer after their landing page was loaded.
type fakeBGA struct {
	server *httptest.Server

	mutex    sync.Mutex
	requests []string
	loggedIn bool
	lastPage string
	// token is the request token the server currently expects.
	token string

	username string
	password string

	noTokenOnHomepage bool
	// loginCookieToken is set through the token cookie on a successful login.
	loginCookieToken string
	// pageToken is embedded in landing pages and expected from then on.
	pageToken string

	rateLimited bool
	failStatus  int
	failBody    string

	gamePages map[int]string
	logs      map[int64]string
	tables    map[int64]string
	players   string
	ranking   string
}

func newFakeBGA(t *testing.T) *fakeBGA {
	f := &fakeBGA{
		token:     "tok-1",
		username:  "alice",
		password:  "hunter2",
		gamePages: map[int]string{},
		logs:      map[int64]string{},
		tables:    map[int64]string{},
		players:   `{"players":[]}`,
		ranking:   `{"ranks":[]}`,
	}
	f.server = httptest.NewServer(f)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBGA) Requests() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeBGA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.URL.Path {
	case "/":
		f.writePage(w, !f.noTokenOnHomepage)
		return
	case loginEndpoint:
		f.login(w, r)
		return
	}

	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		fmt.Fprint(w, f.failBody)
		return
	}

	switch r.URL.Path {
	case "/gamestats", "/gamereview":
		f.lastPage = r.URL.Path
		if f.pageToken != "" {
			f.token = f.pageToken
		}
		f.writePage(w, true)
	default:
		f.data(w, r)
	}
}

func (f *fakeBGA) writePage(w http.ResponseWriter, withToken bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	script := `var somethingElse = 1;`
	if withToken {
		script = fmt.Sprintf(`var bgaConfig = { gameserver: 'gs1', requestToken: '%s', lang: 'en' };`, f.token)
	}
	fmt.Fprintf(w, `<!DOCTYPE html><html><head><script>%s</script></head><body><div id="main"></div></body></html>`, script)
}

func (f *fakeBGA) login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.Header.Get("X-Request-Token") != f.token || r.PostForm.Get("request_token") != f.token {
		fmt.Fprint(w, `{"status":"0","error":"Invalid request token","code":"0"}`)
		return
	}
	if r.PostForm.Get("username") != f.username || r.PostForm.Get("password") != f.password {
		fmt.Fprint(w, `{"status":1,"data":{"success":false,"message":"Wrong password"}}`)
		return
	}

	f.loggedIn = true
	if f.loginCookieToken != "" {
		f.token = f.loginCookieToken
		http.SetCookie(w, &http.Cookie{Name: tokenCookie, Value: f.token, Path: "/"})
	}
	fmt.Fprintf(w, `{"status":1,"data":{"success":true,"user_id":"42","username":"%s"}}`, f.username)
}

func (f *fakeBGA) data(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError := func(message string) {
		fmt.Fprintf(w, `{"status":"0","error":"%s","code":"100"}`, message)
	}

	if !f.loggedIn || r.Header.Get("X-Request-Token") != f.token {
		writeError("Invalid session")
		return
	}
	if f.rateLimited {
		writeError("You have reached a limit of requests for today, please try again tomorrow")
		return
	}

	query := r.URL.Query()
	var data string
	switch r.URL.Path {
	case "/gamestats/gamestats/getGames.html":
		if f.lastPage != "/gamestats" {
			writeError("Unexpected call")
			return
		}
		page, _ := strconv.Atoi(query.Get("page"))
		data = f.gamePages[page]
		if data == "" {
			data = `{"tables":[]}`
		}
	case "/archive/archive/logs.html":
		id, _ := strconv.ParseInt(query.Get("table"), 10, 64)
		if f.lastPage != "/gamereview" || query.Get("translated") != "true" {
			writeError("Unexpected call")
			return
		}
		data = f.logs[id]
	case "/table/table/tableinfos.html":
		id, _ := strconv.ParseInt(query.Get("id"), 10, 64)
		data = f.tables[id]
	case "/player/player/findPlayer.html":
		data = f.players
	case "/gamepanel/gamepanel/getRanking.html":
		data = f.ranking
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if data == "" {
		writeError("Unknown table")
		return
	}
	fmt.Fprintf(w, `{"status":1,"data":%s}`, data)
}
