package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Protocol-Lattice/sdlprint"
	"github.com/Protocol-Lattice/sdlprint/printer"
)

const (
	maxUploadMemory  = 32 << 20
	defaultMaxBody   = 8 << 20
	requestIDHeader  = "X-Request-ID"
	defaultCacheSize = 256
	defaultCacheTTL  = 10 * time.Minute
)

// PrintRequest is the body of a print request.
type PrintRequest struct {
	Schema  string          `json:"schema"`
	Options *RequestOptions `json:"options,omitempty"`
}

// RequestOptions override the server's layout thresholds for one request.
type RequestOptions struct {
	MaxWidth    int `json:"maxWidth,omitempty"`
	InlineLimit int `json:"inlineLimit,omitempty"`
}

// PrintResponse carries either the canonical schema or an error.
type PrintResponse struct {
	Name    string     `json:"name,omitempty"`
	Printed string     `json:"printed,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed print. Line and Column are 1-based and
// omitted for errors without a source position.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// Config configures a Server.
type Config struct {
	Options   printer.Options
	CacheSize int
	CacheTTL  time.Duration
	Logger    *logrus.Logger
	Registry  *prometheus.Registry

	// MaxBodyBytes bounds request bodies and WebSocket messages.
	MaxBodyBytes int64
}

// Server exposes the print command over HTTP and WebSocket.
type Server struct {
	opts    printer.Options
	maxBody int64
	cache   *lru.LRU[string, PrintResponse]
	log     *logrus.Logger
	metrics *metrics
	router  *mux.Router
}

// NewServer creates a Server and its routes:
//
//	POST /print         JSON PrintRequest -> PrintResponse
//	POST /print/upload  multipart .graphql files -> []PrintResponse
//	GET  /print/live    WebSocket, one PrintRequest per message
//	GET  /healthz
//	GET  /metrics
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBody
	}

	s := &Server{
		opts:    cfg.Options,
		maxBody: cfg.MaxBodyBytes,
		cache:   lru.NewLRU[string, PrintResponse](cfg.CacheSize, nil, cfg.CacheTTL),
		log:     cfg.Logger,
		metrics: newMetrics(cfg.Registry),
		router:  mux.NewRouter(),
	}

	s.router.Use(s.requestID)
	s.router.HandleFunc("/print", s.Print).Methods(http.MethodPost)
	s.router.HandleFunc("/print/upload", s.Upload).Methods(http.MethodPost)
	s.router.HandleFunc("/print/live", s.Live).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		r.Header.Set(requestIDHeader, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logger(r *http.Request) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"request_id": r.Header.Get(requestIDHeader),
		"path":       r.URL.Path,
	})
}

// Print handles a JSON print request. Schema errors are reported in the
// body with status 422; malformed requests get 400 and oversized ones 413.
func (s *Server) Print(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.readFailed(w, err)
		return
	}

	var req PrintRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	resp := s.print(req)
	if resp.Error != nil {
		s.logger(r).WithField("kind", resp.Error.Kind).Debug(resp.Error.Message)
	}
	writeJSON(w, statusFor(resp), resp)
}

// Upload handles multipart/form-data requests: every file part is printed
// independently and the responses keep the order of the parts.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.Print(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.readFailed(w, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	var headers []*multipart.FileHeader
	for _, field := range sortedKeys(r.MultipartForm.File) {
		headers = append(headers, r.MultipartForm.File[field]...)
	}
	if len(headers) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	opts := RequestOptions{}
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			http.Error(w, "invalid options JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	results := make([]PrintResponse, len(headers))
	var g errgroup.Group
	for i, header := range headers {
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", header.Filename, err)
			}
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", header.Filename, err)
			}
			results[i] = s.print(PrintRequest{Schema: string(data), Options: &opts})
			results[i].Name = header.Filename
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger(r).WithError(err).Warn("upload failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	for _, res := range results {
		if res.Error != nil {
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, results)
}

// upgrader upgrades HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Live prints schemas over a WebSocket connection: every text message is a
// PrintRequest and every reply a PrintResponse, until the client closes.
func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger(r).WithError(err).Warn("unable to upgrade to websocket")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.maxBody)

	log := s.logger(r)
	log.Debug("live session opened")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				log.WithField("limit", s.maxBody).Warn("live message too large")
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("live session read failed")
			}
			return
		}

		var req PrintRequest
		var resp PrintResponse
		if err := json.Unmarshal(msg, &req); err != nil {
			resp = PrintResponse{Error: &ErrorBody{Kind: "RequestError", Message: "invalid JSON"}}
		} else {
			resp = s.print(req)
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Warn("failed to write live response")
			return
		}
	}
}

// readFailed answers a body read error, with 413 when the body passed the
// size limit.
func (s *Server) readFailed(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, fmt.Sprintf("request body larger than %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// print runs one print invocation, consulting the cache first.
func (s *Server) print(req PrintRequest) PrintResponse {
	opts := s.opts
	if req.Options != nil {
		if req.Options.MaxWidth > 0 {
			opts.MaxWidth = req.Options.MaxWidth
		}
		if req.Options.InlineLimit > 0 {
			opts.InlineLimit = req.Options.InlineLimit
		}
	}

	key := cacheKey(req.Schema, opts)
	if resp, ok := s.cache.Get(key); ok {
		s.metrics.cacheHits.Inc()
		return resp
	}

	start := time.Now()
	out, err := sdlprint.Format(req.Schema, opts)
	s.metrics.duration.Observe(time.Since(start).Seconds())

	var resp PrintResponse
	if err != nil {
		resp.Error = errorBody(err)
		s.metrics.prints.WithLabelValues(resp.Error.Kind).Inc()
	} else {
		resp.Printed = out
		s.metrics.prints.WithLabelValues("ok").Inc()
	}
	s.cache.Add(key, resp)
	return resp
}

func errorBody(err error) *ErrorBody {
	body := &ErrorBody{Kind: sdlprint.ErrorKind(err), Message: sdlprint.ErrorMessage(err)}
	if pos, ok := sdlprint.ErrorPosition(err); ok {
		body.Line, body.Column = pos.Line, pos.Column
	}
	return body
}

func cacheKey(src string, opts printer.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%d:", opts.MaxWidth, opts.InlineLimit)
	io.WriteString(h, src)
	return hex.EncodeToString(h.Sum(nil))
}

func statusFor(resp PrintResponse) int {
	if resp.Error != nil {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sortedKeys(m map[string][]*multipart.FileHeader) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
