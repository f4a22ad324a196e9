// Package api exposes text generation over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/scrivener/internal/engine"
	"github.com/samcharles93/scrivener/internal/model"
	"github.com/samcharles93/scrivener/internal/vocab"
)

const maxGenerationsPerRequest = 16

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	Seed        string   `json:"seed"`
	Length      *int     `json:"length,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	RandSeed    *int64   `json:"rand_seed,omitempty"`
	N           *int     `json:"n,omitempty"`
}

// GenerateResponse is the reply for a successful generation.
type GenerateResponse struct {
	ID          string       `json:"id"`
	Object      string       `json:"object"`
	Created     int64        `json:"created"`
	Seed        string       `json:"seed"`
	Temperature float64      `json:"temperature"`
	Generations []Generation `json:"generations"`
	Usage       Usage        `json:"usage"`
}

type Generation struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Usage struct {
	SeedRunes      int `json:"seed_runes"`
	GeneratedRunes int `json:"generated_runes"`
	DroppedRunes   int `json:"dropped_runes"`
}

// ResponseError is the error payload envelope.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Server serves generation requests against one model/vocabulary pair.
// The model interface makes no concurrency promises, so generations are
// serialised behind a mutex.
type Server struct {
	model  model.SequenceModel
	vocab  *vocab.Vocabulary
	engine *engine.Engine
	clock  func() time.Time

	mu sync.Mutex
}

func NewServer(m model.SequenceModel, v *vocab.Vocabulary, eng *engine.Engine) *Server {
	return &Server{
		model:  m,
		vocab:  v,
		engine: eng,
		clock:  time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/generate", s.handleGenerate)
	e.GET("/v1/vocab", s.handleVocab)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleGenerate(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "decode request: "+err.Error())
	}

	if req.Seed == "" {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "seed is required", "seed", "")
	}

	genReq := engine.Request{
		Seed:        req.Seed,
		Length:      engine.DefaultLength,
		Temperature: engine.DefaultTemperature,
		RandSeed:    -1,
	}
	if req.Length != nil {
		genReq.Length = *req.Length
	}
	if req.Temperature != nil {
		genReq.Temperature = *req.Temperature
	}
	if req.RandSeed != nil {
		genReq.RandSeed = *req.RandSeed
	}
	if err := genReq.Validate(); err != nil {
		return writeBadRequest(c, err.Error())
	}

	n := 1
	if req.N != nil {
		n = *req.N
	}
	if n < 1 || n > maxGenerationsPerRequest {
		return writeError(c, http.StatusBadRequest, "invalid_request_error",
			fmt.Sprintf("n must be in [1,%d], got %d", maxGenerationsPerRequest, n), "n", "")
	}

	generations := make([]Generation, 0, n)
	var usage Usage
	for i := 0; i < n; i++ {
		r := genReq
		if r.RandSeed >= 0 {
			r.RandSeed += int64(i)
		}

		s.mu.Lock()
		res, err := s.engine.Generate(s.model, s.vocab, r, nil)
		s.mu.Unlock()
		if err != nil {
			if errors.Is(err, engine.ErrEmptySeed) {
				return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "seed", "empty_seed")
			}
			return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
		}

		generations = append(generations, Generation{Index: i, Text: res.Text})
		usage.GeneratedRunes += res.Stats.Generated
		usage.DroppedRunes = res.DroppedRunes
	}
	usage.SeedRunes = len([]rune(req.Seed)) - usage.DroppedRunes

	return c.JSON(http.StatusOK, GenerateResponse{
		ID:          "gen_" + uuid.NewString(),
		Object:      "text.generation",
		Created:     s.clock().Unix(),
		Seed:        req.Seed,
		Temperature: genReq.Temperature,
		Generations: generations,
		Usage:       usage,
	})
}

func (s *Server) handleVocab(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"size":       s.vocab.Size(),
		"characters": s.vocab.String(),
	})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"vocab_size": s.vocab.Size(),
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
