package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crillab/featsat/bf"
	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/explain"
	"github.com/crillab/featsat/export"
	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/mwp"
	"github.com/crillab/featsat/translate"
)

// readModel parses the model uploaded in the "file" field of the request.
func (s *Server) readModel(c *gin.Context) (*fm.Model, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, badRequest("no_file", errNoFile)
	}
	if fh.Filename == "" {
		return nil, badRequest("no_file", errNoFilename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open upload: %w", err)
	}
	defer f.Close()
	m, err := fm.Parse(fh.Filename, f)
	if err != nil {
		return nil, badRequest("invalid_model", err)
	}
	return m, nil
}

// compile reads the uploaded model and compiles it.
func (s *Server) compile(c *gin.Context) (*fm.Model, *cnf.Problem, error) {
	m, err := s.readModel(c)
	if err != nil {
		return nil, nil, err
	}
	pb, err := cnf.Compile(m, cnf.WithTranslator(s.tr))
	if err != nil {
		return nil, nil, badRequest("invalid_constraint", err)
	}
	return m, pb, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "solver": s.cfg.Solver.Backend})
}

func (s *Server) handleUpload(c *gin.Context) {
	m, err := s.readModel(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logic_formula": export.Formula(m, s.tr),
		"constraints":   translate.Resolve(m.Constraints, s.tr),
	})
}

func (s *Server) handleFindMWP(c *gin.Context) {
	m, pb, err := s.compile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := s.solveContext(c)
	defer cancel()
	res, err := s.enumerator.Enumerate(ctx, pb)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.requestLogger(c).Info("enumerated products",
		"products", len(res.Products), "iterations", res.Iterations, "duration", res.Duration)
	c.JSON(http.StatusOK, gin.H{
		"minimum_working_products": res.Products,
		"constraints":              translate.Resolve(m.Constraints, s.tr),
		"dropped":                  pb.Dropped,
		"iterations":               res.Iterations,
	})
}

func (s *Server) handleVisualization(c *gin.Context) {
	m, err := s.readModel(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, export.NewView(m, s.tr))
}

type translateRequest struct {
	English  string   `json:"englishStatement" binding:"required"`
	Features []string `json:"features"`
}

type translateResponse struct {
	Expression string            `json:"booleanExpression"`
	Type       fm.ConstraintType `json:"type"`
}

// handleTranslate translates one statement. When features are given, the
// translation must only name these features.
func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid_request", err))
		return
	}
	expr, ok := s.tr.Translate(req.English)
	if !ok {
		s.fail(c, &apiError{
			status: http.StatusUnprocessableEntity,
			code:   "untranslated",
			err:    fmt.Errorf("%w: %q", errUntranslated, req.English),
		})
		return
	}
	if len(req.Features) > 0 {
		if err := checkFeatures(expr, req.Features); err != nil {
			s.fail(c, &apiError{status: http.StatusUnprocessableEntity, code: "unknown_feature", err: err})
			return
		}
	}
	c.JSON(http.StatusOK, translateResponse{Expression: expr, Type: translate.Classify(expr)})
}

// checkFeatures makes sure expr is a valid formula over the given features.
func checkFeatures(expr string, features []string) error {
	vars, err := cnf.NewVars(features)
	if err != nil {
		return err
	}
	f, err := bf.Parse(expr)
	if err != nil {
		return err
	}
	for _, name := range bf.Vars(f) {
		if _, err := vars.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleSmallest(c *gin.Context) {
	_, pb, err := s.compile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := s.solveContext(c)
	defer cancel()
	product, err := mwp.Smallest(ctx, pb)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (s *Server) handleCount(c *gin.Context) {
	_, pb, err := s.compile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := s.solveContext(c)
	defer cancel()
	n, err := mwp.Count(ctx, pb, s.cfg.Solver.BDDNodes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n.String()})
}

func (s *Server) handleExplain(c *gin.Context) {
	_, pb, err := s.compile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := s.solveContext(c)
	defer cancel()
	diag, err := explain.Diagnose(ctx, pb)
	if err != nil {
		s.fail(c, err)
		return
	}
	messages := make([]string, len(diag.Rules))
	for i, r := range diag.Rules {
		messages[i] = r.String()
	}
	c.JSON(http.StatusOK, gin.H{"rules": diag.Rules, "messages": messages})
}

// handleCheck checks the comma-separated features of the "selection" field.
func (s *Server) handleCheck(c *gin.Context) {
	_, pb, err := s.compile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var selection []string
	for _, name := range strings.Split(c.PostForm("selection"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			selection = append(selection, name)
		}
	}
	ctx, cancel := s.solveContext(c)
	defer cancel()
	report, err := explain.Check(ctx, pb, selection, s.factory)
	if err != nil {
		if errors.Is(err, cnf.ErrUnknownFeature) {
			err = badRequest("unknown_feature", err)
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"selection":   report.Selection,
		"violations":  report.Violations,
		"completable": report.Completable,
		"valid":       report.Valid(),
	})
}
