package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appengine-ltd/wildcast/internal/store"
	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

const defaultForecastDays = 7

type predictBody struct {
	Species     string               `json:"species" binding:"required"`
	Date        string               `json:"date"`
	Location    *wildlife.Location   `json:"location"`
	Temperature *float64             `json:"temperature"`
	Conditions  wildlife.Observation `json:"conditions"`
}

type activeBody struct {
	Active *bool `json:"active" binding:"required"`
}

type weightBody struct {
	Weight *float64 `json:"weight" binding:"required"`
}

func (s *Server) listSpecies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"species": s.engine.Species()})
}

func (s *Server) getModel(c *gin.Context) {
	model, err := s.engine.Model(c.Request.Context(), c.Param("id"), c.Query("region"))
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, model)
}

func (s *Server) postPredict(c *gin.Context) {
	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	date, err := s.parseDate(body.Date)
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	req := wildlife.QueryRequest{
		Species:     body.Species,
		Date:        date,
		Location:    body.Location,
		Temperature: body.Temperature,
		Conditions:  body.Conditions,
	}
	s.predict(c, req)
}

func (s *Server) getPredict(c *gin.Context) {
	req, err := s.queryFromParams(c)
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	s.predict(c, req)
}

func (s *Server) predict(c *gin.Context, req wildlife.QueryRequest) {
	start := time.Now()
	result, err := s.engine.Query(c.Request.Context(), req)
	s.observe("predict", req.Species, start, err)
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getForecast(c *gin.Context) {
	req, err := s.queryFromParams(c)
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	days := defaultForecastDays
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			s.writeError(c, &wildlife.ValidationError{Field: "days", Reason: "must be an integer"}, false)
			return
		}
	}

	start := time.Now()
	results, err := s.engine.Forecast(c.Request.Context(), req, days)
	s.observe("forecast", req.Species, start, err)
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"species": results[0].Species, "region": results[0].Region, "days": results})
}

func (s *Server) listRules(c *gin.Context) {
	rules, err := s.engine.Rules(c.Request.Context(), c.Query("species"), c.Query("season"))
	if err != nil {
		s.writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (s *Server) createRule(c *gin.Context) {
	var rule wildlife.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule: " + err.Error()})
		return
	}
	created, err := s.writer.CreateRule(c.Request.Context(), rule)
	s.recordWrite("create", err)
	if err != nil {
		s.writeError(c, err, true)
		return
	}
	s.logger.Info("rule created", zap.String("id", created.ID))
	c.JSON(http.StatusCreated, created)
}

func (s *Server) toggleRule(c *gin.Context) {
	var body activeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"active\": true|false}"})
		return
	}
	rule, err := s.writer.ToggleActive(c.Request.Context(), c.Param("id"), *body.Active)
	s.recordWrite("toggle_active", err)
	if err != nil {
		s.writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) setRuleWeight(c *gin.Context) {
	var body weightBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"weight\": number}"})
		return
	}
	rule, err := s.writer.SetWeight(c.Request.Context(), c.Param("id"), *body.Weight)
	s.recordWrite("set_weight", err)
	if err != nil {
		s.writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// queryFromParams builds a query from /predict/:species style URLs:
// ?date=2024-10-01&region=northeast&temp=4&wind=6&precip=0&pressure=falling&cond=moon_phase:full
func (s *Server) queryFromParams(c *gin.Context) (wildlife.QueryRequest, error) {
	date, err := s.parseDate(c.Query("date"))
	if err != nil {
		return wildlife.QueryRequest{}, err
	}
	req := wildlife.QueryRequest{
		Species:    c.Param("species"),
		Date:       date,
		Conditions: wildlife.Observation{},
	}
	if region := c.Query("region"); region != "" {
		req.Location = &wildlife.Location{Region: region}
	}
	if raw := c.Query("temp"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return wildlife.QueryRequest{}, &wildlife.ValidationError{Field: "temp", Reason: "must be a number"}
		}
		req.Temperature = &t
	}
	numeric := map[string]string{"wind": wildlife.FieldWindSpeed, "precip": wildlife.FieldPrecipitation}
	for param, field := range numeric {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return wildlife.QueryRequest{}, &wildlife.ValidationError{Field: param, Reason: "must be a number"}
		}
		req.Conditions[field] = wildlife.Num(v)
	}
	if pressure := c.Query("pressure"); pressure != "" {
		req.Conditions[wildlife.FieldPressureTrend] = wildlife.Str(pressure)
	}
	for _, raw := range c.QueryArray("cond") {
		field, value, err := ParseCondition(raw)
		if err != nil {
			return wildlife.QueryRequest{}, err
		}
		req.Conditions[field] = value
	}
	return req, nil
}

// ParseCondition splits "field:value" or "field=value"; numeric values become numbers.
func ParseCondition(raw string) (string, wildlife.Value, error) {
	idx := strings.IndexAny(raw, ":=")
	if idx <= 0 || idx == len(raw)-1 {
		return "", wildlife.Value{}, &wildlife.ValidationError{Field: "cond", Reason: fmt.Sprintf("%q: want field:value", raw)}
	}
	field := wildlife.NormaliseID(raw[:idx])
	value := strings.TrimSpace(raw[idx+1:])
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return field, wildlife.Num(n), nil
	}
	return field, wildlife.Str(value), nil
}

func (s *Server) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, &wildlife.ValidationError{Field: "date", Reason: fmt.Sprintf("%q: want YYYY-MM-DD", raw)}
	}
	return d, nil
}

func (s *Server) writeError(c *gin.Context, err error, write bool) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}
	var nf *wildlife.NotFoundError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
		if len(nf.Suggestions) > 0 {
			body["suggestions"] = nf.Suggestions
		}
	case errors.Is(err, wildlife.ErrValidation):
		status = http.StatusBadRequest
		if write {
			status = http.StatusUnprocessableEntity
		}
	case errors.Is(err, wildlife.ErrPhaseCoverageGap), errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		body["error"] = "internal error"
	}
	c.JSON(status, body)
}

func (s *Server) observe(kind, rawSpecies string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	label := "unknown"
	if sp, ok := wildlife.LookupSpecies(s.engine.Species(), rawSpecies); ok {
		label = sp.ID
	}
	s.metrics.queries.WithLabelValues(label, outcomeOf(err)).Inc()
	s.metrics.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (s *Server) recordWrite(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ruleWrites.WithLabelValues(op, outcomeOf(err)).Inc()
}
