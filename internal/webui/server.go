package webui

import (
	"context"
	"embed"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"detect_dashboard/internal/db"
	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/ingest"
	"detect_dashboard/internal/logbook"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
)

//go:embed static
var staticFiles embed.FS

// maxUploadBytes caps multipart bodies accepted by the detect routes.
const maxUploadBytes = 200 << 20

// HistoryStore is the submission history the server records to and lists.
type HistoryStore interface {
	orchestrator.History
	Recent(ctx context.Context, limit int) ([]db.Submission, error)
}

type Options struct {
	Detector   orchestrator.Detector
	Origins    []string
	Heuristics map[normalize.Media]bool
	Interval   time.Duration
	History    HistoryStore
	Recorder   *logbook.Recorder
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type Server struct {
	engine        *gin.Engine
	hub           *Hub
	orchestrators map[normalize.Media]*orchestrator.Orchestrator
	history       HistoryStore
	recorder      *logbook.Recorder
	upgrader      websocket.Upgrader
}

func New(opts Options) *Server {
	rec := opts.Recorder
	if rec == nil {
		rec = logbook.NewRecorder()
	}
	s := &Server{
		hub:           NewHub(rec),
		orchestrators: map[normalize.Media]*orchestrator.Orchestrator{},
		history:       opts.History,
		recorder:      rec,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, m := range []normalize.Media{normalize.Video, normalize.Image, normalize.Text} {
		o := orchestrator.Options{
			Heuristic:        opts.Heuristics[m],
			ProgressInterval: opts.Interval,
			Logger:           rec,
		}
		if opts.History != nil {
			o.History = opts.History
		}
		s.orchestrators[m] = orchestrator.New(m, opts.Detector, s.hub.Sink(), o)
	}
	s.engine = s.routes(opts.Origins)
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Hub() *Hub { return s.hub }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		logbook.Log(s.recorder, logbook.LevelInfo, "WEB", "Listening", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	router.Use(cors.New(corsCfg))

	page, _ := fs.Sub(staticFiles, "static")
	router.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(page))
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "detect-web",
			"clients": s.hub.ClientCount(),
		})
	})
	router.GET("/ws", s.handleWebsocket)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/detect/video", s.handleFile(normalize.Video))
		apiV1.POST("/detect/image", s.handleFile(normalize.Image))
		apiV1.POST("/detect/text", s.handleText)
		apiV1.POST("/preview", s.handlePreview)
		apiV1.GET("/history", s.handleHistory)
		apiV1.GET("/logs", func(c *gin.Context) {
			c.JSON(http.StatusOK, s.recorder.Lines())
		})
	}
	return router
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logbook.Log(s.recorder, logbook.LevelRisk, "WEB", "WebSocket upgrade error", err.Error())
		return
	}
	s.hub.Serve(conn)
}

func (s *Server) handleFile(m normalize.Media) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := readUpload(c, m)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid upload", err)
			return
		}
		s.submit(c, m, sub)
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// handleText accepts a JSON body or a multipart document upload.
func (s *Server) handleText(c *gin.Context) {
	var sub detectapi.Submission
	if c.ContentType() == "multipart/form-data" {
		var err error
		sub, err = readUpload(c, normalize.Text)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid upload", err)
			return
		}
	} else {
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			abort(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
		sub = detectapi.Submission{Media: normalize.Text, Text: req.Text}
	}
	s.submit(c, normalize.Text, sub)
}

func (s *Server) submit(c *gin.Context, m normalize.Media, sub detectapi.Submission) {
	view, err := s.orchestrators[m].Submit(c.Request.Context(), sub)
	var submitErr *orchestrator.SubmitError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, view)
	case errors.Is(err, orchestrator.ErrInputMissing):
		abort(c, http.StatusBadRequest, orchestrator.MissingInputMessage(m), err)
	case errors.Is(err, orchestrator.ErrBusy):
		abort(c, http.StatusConflict, "analysis already in progress", err)
	case errors.As(err, &submitErr):
		abort(c, http.StatusBadGateway, orchestrator.FailureMessage(m, submitErr.Err), err)
	default:
		abort(c, http.StatusInternalServerError, "analysis failed", err)
	}
}

func (s *Server) handlePreview(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		abort(c, http.StatusBadRequest, "no file provided", err)
		return
	}
	raw, err := readFormFile(fh)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid upload", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        fh.Filename,
		"contentType": ingest.ContentType(fh.Filename, raw),
		"dataUrl":     ingest.DataURL(fh.Filename, raw),
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, []db.Submission{})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, "failed to load history", err)
		return
	}
	if rows == nil {
		rows = []db.Submission{}
	}
	c.JSON(http.StatusOK, rows)
}

// readUpload returns an empty submission when no file was sent so the
// orchestrator can reject it as missing input.
func readUpload(c *gin.Context, m normalize.Media) (detectapi.Submission, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return detectapi.Submission{Media: m}, nil
		}
		return detectapi.Submission{}, err
	}
	raw, err := readFormFile(fh)
	if err != nil {
		return detectapi.Submission{}, err
	}
	if len(raw) == 0 {
		return detectapi.Submission{Media: m, FileName: fh.Filename}, nil
	}
	return ingest.FromUpload(m, fh.Filename, raw)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func abort(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:  status,
		Message: message,
		Error:   err.Error(),
	})
}
