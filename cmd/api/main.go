package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hypersmurf/internal/config"
	"hypersmurf/internal/data"
	"hypersmurf/internal/ensemble"
	"hypersmurf/pkg/utils"
)

type server struct {
	ens      *ensemble.Ensemble
	positive int
	apiKey   string
	logger   *zap.Logger
}

func main() {
	fs := flag.NewFlagSet("api", flag.ExitOnError)
	n := fs.Int("n", 20000, "Synthetic rows when -data is empty")
	fraudRate := fs.Float64("fraud_rate", 0.02, "Base fraud rate of the synthetic rows")
	cfg, err := config.ParseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Log.Level != "" || cfg.Log.File != "" {
		utils.SetLogger(utils.NewLogger(cfg.Log.Level, cfg.Log.File))
	}
	logger := utils.Logger()
	defer logger.Sync()

	ds, err := cfg.Data.Open(*n, *fraudRate)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	positive, err := cfg.Data.PositiveClass(ds)
	if err != nil {
		logger.Fatal("positive class", zap.Error(err))
	}
	ens := ensemble.New(cfg.Ensemble, ensemble.WithLogger(logger))
	if err := ens.Build(context.Background(), ds); err != nil {
		logger.Fatal("build ensemble", zap.Error(err))
	}

	apiKey := cfg.Server.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	s := &server{ens: ens, positive: positive, apiKey: apiKey, logger: logger}
	logger.Info("serving", zap.String("addr", cfg.Server.Addr), zap.String("run", ens.RunID()))
	if err := s.router().Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", s.health)

	api := r.Group("/")
	api.Use(s.apiKeyMiddleware)
	api.POST("/predict", s.handlePredict)
	api.POST("/batch", s.handleBatch)
	api.POST("/members", s.handleMembers)
	api.GET("/model", s.handleModel)
	return r
}

func (s *server) apiKeyMiddleware(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"model":   s.ens.Name(),
		"members": len(s.ens.Members()),
		"run":     s.ens.RunID(),
	})
}

// predictReq maps attribute names to values: numbers for numeric
// attributes, labels for nominal ones. Absent or null values are missing.
type predictReq struct {
	Values map[string]any `json:"values" binding:"required"`
}

func (s *server) instance(req predictReq) (data.Instance, error) {
	header := s.ens.Header()
	values := make([]float64, header.NumAttributes())
	for j, a := range header.Attributes {
		values[j] = data.Missing()
		v, ok := req.Values[a.Name]
		if !ok || v == nil || j == header.ClassIndex {
			continue
		}
		switch x := v.(type) {
		case float64:
			if a.IsNominal() {
				return data.Instance{}, fmt.Errorf("attribute %q wants a label, got %v", a.Name, x)
			}
			values[j] = x
		case string:
			if !a.IsNominal() {
				return data.Instance{}, fmt.Errorf("attribute %q wants a number, got %q", a.Name, x)
			}
			idx := a.IndexOf(x)
			if idx < 0 {
				return data.Instance{}, fmt.Errorf("attribute %q has no label %q", a.Name, x)
			}
			values[j] = float64(idx)
		default:
			return data.Instance{}, fmt.Errorf("attribute %q: unsupported value %v", a.Name, v)
		}
	}
	return data.NewInstance(values...), nil
}

func (s *server) score(req predictReq) (gin.H, error) {
	in, err := s.instance(req)
	if err != nil {
		return nil, err
	}
	dist, err := s.ens.Distribution(in)
	if err != nil {
		return nil, err
	}
	header := s.ens.Header()
	p := dist[s.positive]
	return gin.H{
		"distribution": dist,
		"labels":       header.ClassAttribute().Values,
		"score":        p,
		"risk":         riskBand(p),
	}, nil
}

func (s *server) handlePredict(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := s.score(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) handleBatch(c *gin.Context) {
	var items []predictReq
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out := make([]gin.H, len(items))
	for i, it := range items {
		res, err := s.score(it)
		if err != nil {
			s.fail(c, fmt.Errorf("item %d: %w", i, err))
			return
		}
		out[i] = res
	}
	c.JSON(http.StatusOK, out)
}

// handleMembers returns each member's positive-class probability, the
// input of a downstream stacking model.
func (s *server) handleMembers(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	in, err := s.instance(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	scores, err := s.ens.MemberScores(in, s.positive)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores, "seeds": s.ens.Seeds()})
}

func (s *server) handleModel(c *gin.Context) {
	c.String(http.StatusOK, s.ens.String())
}

func (s *server) fail(c *gin.Context, err error) {
	var pe *ensemble.PredictionError
	if errors.As(err, &pe) {
		s.logger.Error("prediction failed", zap.Int("member", pe.Member), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "member": pe.Member})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func riskBand(p float64) string {
	switch {
	case p >= 0.95:
		return "high"
	case p >= 0.7:
		return "medium"
	case p >= 0.5:
		return "low"
	default:
		return "very_low"
	}
}
