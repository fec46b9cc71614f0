package bga

// tokenCookie is the cookie BGA rotates the request token through.
const tokenCookie = "TournoiEnLigneidt"

// Session is the client's view of the scraping session. The client owns the only
// mutable copy, every change goes through the methods below.
type Session struct {
	RequestToken string
	UserID       int64
	Username     string

	authenticated bool
}

// AdoptToken replaces the request token, it reports whether the token changed.
// Empty and "deleted" values (what BGA sends when clearing a cookie) are ignored.
func (s *Session) AdoptToken(token string) bool {
	if token == "" || token == "deleted" || token == s.RequestToken {
		return false
	}
	s.RequestToken = token
	return true
}

func (s *Session) RecordUser(id int64, name string) {
	s.UserID = id
	s.Username = name
}

func (s *Session) MarkAuthenticated() {
	s.authenticated = true
}

func (s Session) Authenticated() bool {
	return s.authenticated && s.RequestToken != ""
}

func (s *Session) Reset() {
	*s = Session{}
}
