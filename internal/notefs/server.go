package notefs

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/webdav"

	"notedav/internal/store"
)

// Server wires the Filesystem Facade into an HTTP server. It owns the three
// pieces of ambient behavior spec.md §6 places outside the facade proper:
// Basic Auth, the DELETE-on-root guard (double-enforced alongside
// FS.RemoveAll's own check), and the text/* charset fixup.
type Server struct {
	fsys     *FS
	username string
	password string
	dav      *webdav.Handler
}

// NewServer builds a Server over st, guarded by the given credentials.
func NewServer(st *store.Store, username, password string) *Server {
	fsys := New(st)
	return &Server{
		fsys:     fsys,
		username: username,
		password: password,
		dav: &webdav.Handler{
			Prefix:     "/",
			FileSystem: fsys,
			LockSystem: webdav.NewMemLS(),
			Logger:     logRequest,
		},
	}
}

// Handler returns the fully wrapped http.Handler: auth, then the root-DELETE
// guard, then the charset fixup, then the DAV handler itself.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.dav)
	h = withCharset(h)
	h = withRootDeleteGuard(h)
	h = s.withBasicAuth(h)
	return h
}

// ListenAndServe starts the server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func logRequest(r *http.Request, err error) {
	if err != nil {
		log.Printf("webdav: %s %s: %v", r.Method, r.URL.Path, err)
	}
}

// withBasicAuth rejects requests whose credentials don't match, comparing
// both username and password in constant time and AND-combining the
// results — a wrong-at-byte-0 password must take the same time as a
// wrong-at-last-byte one (spec.md §6, §8 scenario 8).
func (s *Server) withBasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) == 1
		if !ok || !(userOK && passOK) {
			w.Header().Set("WWW-Authenticate", `Basic realm="WebDAV"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRootDeleteGuard rejects DELETE on the empty path ahead of the DAV
// handler, matching FS.RemoveAll's own KindRoot check at the facade layer.
func withRootDeleteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && (r.URL.Path == "/" || r.URL.Path == "") {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withCharset appends charset=utf-8 to any text/* response missing one.
func withCharset(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&charsetWriter{ResponseWriter: w}, r)
	})
}

type charsetWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *charsetWriter) fixupContentType() {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	ct := w.Header().Get("Content-Type")
	if strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "charset") {
		w.Header().Set("Content-Type", ct+"; charset=utf-8")
	}
}

func (w *charsetWriter) WriteHeader(code int) {
	w.fixupContentType()
	w.ResponseWriter.WriteHeader(code)
}

func (w *charsetWriter) Write(b []byte) (int, error) {
	w.fixupContentType()
	return w.ResponseWriter.Write(b)
}
