package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pedrohavay/recordlink/linkage"
	"github.com/pedrohavay/recordlink/metrics"
	"go.uber.org/zap"
)

type scoreResponse struct {
	Profile string  `json:"profile"`
	Score   float64 `json:"score"`
}

type explainResponse struct {
	Profile string `json:"profile"`
	linkage.Comparison
}

type putResponse struct {
	linkage.Record
	Warnings []string `json:"warnings,omitempty"`
}

type similarResponse struct {
	Profile   string          `json:"profile"`
	Threshold float64         `json:"threshold"`
	Matches   []linkage.Match `json:"matches"`
}

func decodeJSON(c echo.Context, v any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return nil
}

func boolParam(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return v, nil
}

func (s *Server) engine(c echo.Context) (string, *linkage.Engine, error) {
	name := strings.TrimSpace(c.QueryParam("profile"))
	if name == "" {
		name = s.profile
	}
	e, ok := s.engines[name]
	if !ok {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown weight profile %q", name))
	}
	return name, e, nil
}

func (s *Server) listPersons(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) getPerson(c echo.Context) error {
	r, err := s.store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) putPerson(c echo.Context) error {
	var r linkage.Record
	if err := decodeJSON(c, &r); err != nil {
		return err
	}
	r.ID = c.Param("id")

	clean, err := boolParam(c, "clean")
	if err != nil {
		return err
	}
	resp := putResponse{}
	if clean {
		cleaned, cerr := linkage.Clean(r, linkage.CleanOptions{Region: s.region})
		r = cleaned
		if cerr != nil {
			resp.Warnings = strings.Split(cerr.Error(), "\n")
			s.logger.Warn("record cleaned with warnings", zap.String("id", r.ID), zap.Error(cerr))
		}
	}
	if err := linkage.Validate(r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !r.HasAny() {
		resp.Warnings = append(resp.Warnings, "record has no comparable fields")
	}

	s.store.Put(r)
	metrics.StoreRecords.Set(float64(s.store.Len()))
	resp.Record = r
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) deletePerson(c echo.Context) error {
	if err := s.store.Delete(c.Param("id")); err != nil {
		return err
	}
	metrics.StoreRecords.Set(float64(s.store.Len()))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) similarity(c echo.Context) error {
	var req linkage.Pair
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	explain, err := boolParam(c, "explain")
	if err != nil {
		return err
	}
	name, engine, err := s.engine(c)
	if err != nil {
		return err
	}

	if explain {
		cmp := engine.Explain(*req.A, *req.B)
		metrics.ObserveScore(name, cmp.Score)
		return c.JSON(http.StatusOK, explainResponse{Profile: name, Comparison: cmp})
	}
	score := engine.Similarity(*req.A, *req.B)
	metrics.ObserveScore(name, score)
	return c.JSON(http.StatusOK, scoreResponse{Profile: name, Score: score})
}

func (s *Server) similar(c echo.Context) error {
	target, err := s.store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	name, engine, err := s.engine(c)
	if err != nil {
		return err
	}
	threshold := s.threshold
	if raw := c.QueryParam("threshold"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid threshold: %q", raw))
		}
	}

	matches := engine.Rank(target, s.store.List(), threshold)
	for _, m := range matches {
		metrics.ObserveScore(name, m.Score)
	}
	return c.JSON(http.StatusOK, similarResponse{Profile: name, Threshold: threshold, Matches: matches})
}
