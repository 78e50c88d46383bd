package web

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

// Launcher starts one pipeline run for a prompt, updating state as it
// goes. The server calls it in a goroutine per accepted request.
type Launcher func(ctx context.Context, prompt string, state *types.RunState)

// ExamplePrompt is one canned prompt shown to clients.
type ExamplePrompt struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

var examplePrompts = []ExamplePrompt{
	{
		ID:          1,
		Title:       "Summer Fun Fair",
		Description: "Create a vibrant flyer for the Summer Fun Fair",
		Prompt:      "Create a vibrant flyer for the 'Summer Fun Fair' happening on July 20, 2025, from 10 AM to 4 PM at Maplewood Park. Include a headline that says 'Join Us for a Day of Family Fun!' and a short description mentioning games, food stalls, a petting zoo, and live music. Add images of a carousel, kids playing games, and a food stall.",
	},
	{
		ID:          2,
		Title:       "Café Menu",
		Description: "Design a café menu for The Cozy Corner Café",
		Prompt:      "Design a café menu for 'The Cozy Corner Café.' Include the following sections and items: Appetizers - 'Garlic Bread Bites' (£3.50), 'Bruschetta' (£4.00); Main Courses - 'Classic Beef Lasagna' (£9.95), 'Vegetarian Quiche' (£8.50); Desserts - 'Chocolate Fudge Cake' (£4.50), 'Lemon Tart' (£4.00); Beverages - 'Cappuccino' (£2.80), 'Fresh Lemonade' (£2.50). Add a small image of the lasagna and the lemon tart.",
	},
	{
		ID:          3,
		Title:       "Grand Opening Sale",
		Description: "Generate an image-based flyer for a Grand Opening Sale",
		Prompt:      "Generate an image-based flyer for a 'Grand Opening Sale' at 'Bella Boutique' on August 5, 2025. The flyer should have a big bold headline that says '50% Off All Items!' and include images of clothing racks and accessories. Add text boxes for the store address and contact number.",
	},
}

var downloadExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
	".png": true,
	".pdf": true,
}

// Server is the thin HTTP layer over the pipeline: accept a prompt, run
// it in the background, let clients poll and download. Task state lives
// in memory only and does not survive a restart.
type Server struct {
	cfg    *config.Config
	launch Launcher
	logger zerolog.Logger

	mu    sync.RWMutex
	tasks map[string]*types.RunState
}

// NewServer creates a Server that starts runs through launch.
func NewServer(cfg *config.Config, launch Launcher) *Server {
	return &Server{
		cfg:    cfg,
		launch: launch,
		logger: logging.WithComponent("web"),
		tasks:  make(map[string]*types.RunState),
	}
}

// Router builds the gin handler.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.POST("/generate", s.handleGenerate)
	api.GET("/status/:id", s.handleStatus)
	api.GET("/download/:filename", s.handleDownload)
	api.GET("/examples", s.handleExamples)
	return r
}

// Serve runs the HTTP server until it fails.
func (s *Server) Serve() error {
	s.logger.Info().Str("addr", s.cfg.Server.Addr).Msg("http server listening")
	return s.Router().Run(s.cfg.Server.Addr)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	taskID := uuid.NewString()
	state := types.NewRunState(taskID, prompt)

	s.mu.Lock()
	s.tasks[taskID] = state
	s.mu.Unlock()

	go s.launch(context.Background(), prompt, state)

	s.logger.Info().Str("task", taskID).Msg("generation task accepted")
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": types.StatusPending})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.RLock()
	state, ok := s.tasks[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}
	// The pipeline goroutine may be mutating the state right now.
	c.JSON(http.StatusOK, state.Snapshot())
}

// handleDownload serves files from the output directory only, with an
// extension allow-list.
func (s *Server) handleDownload(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if !downloadExtensions[strings.ToLower(filepath.Ext(filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed"})
		return
	}
	c.FileAttachment(filepath.Join(s.cfg.Paths.Output, filename), filename)
}

func (s *Server) handleExamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": examplePrompts})
}
