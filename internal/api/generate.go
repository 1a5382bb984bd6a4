package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reelctl/internal/generate"
	"reelctl/internal/reel"
)

type generateBody struct {
	Transcript string          `json:"transcript"`
	Template   string          `json:"template"`
	Targets    []string        `json:"targets"`
	Questions  []reel.Question `json:"questions"`
	Answers    []string        `json:"answers"`
}

type generateResponse struct {
	Script reel.GeneratedScript `json:"script"`
	YAML   string               `json:"yaml"`
	Item   reel.HistoryItem     `json:"historyItem"`
}

func (s *Server) bindGenerate(c *gin.Context) (generateBody, reel.Targets, bool) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return body, nil, false
	}
	targets, err := reel.NewTargets(body.Targets...)
	if err != nil {
		badRequest(c, err.Error())
		return body, nil, false
	}
	if s.deps.Generate == nil {
		notConfigured(c, "generation")
		return body, nil, false
	}
	return body, targets, true
}

func (s *Server) generateScript(c *gin.Context) {
	body, targets, ok := s.bindGenerate(c)
	if !ok {
		return
	}
	template, err := reel.ParseTemplate(body.Template)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Generate.Generate(c.Request.Context(), generate.Request{
		Transcript: body.Transcript,
		Template:   template,
		Targets:    targets,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, generateResponse{Script: res.Generation.Script, YAML: res.Generation.Markup, Item: res.Item})
}

func (s *Server) generateQuestions(c *gin.Context) {
	body, targets, ok := s.bindGenerate(c)
	if !ok {
		return
	}
	questions, err := s.deps.Generate.Questions(c.Request.Context(), body.Transcript, targets)
	if err != nil {
		writeError(c, err)
		return
	}
	if questions == nil {
		questions = []reel.Question{}
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) generateAnswers(c *gin.Context) {
	body, targets, ok := s.bindGenerate(c)
	if !ok {
		return
	}
	res, err := s.deps.Generate.Answer(c.Request.Context(), body.Transcript, targets, body.Questions, body.Answers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, generateResponse{Script: res.Generation.Script, YAML: res.Generation.Markup, Item: res.Item})
}

func (s *Server) generateTheme(c *gin.Context) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if s.deps.Generate == nil {
		notConfigured(c, "generation")
		return
	}
	script, err := s.deps.Generate.FromTheme(c.Request.Context(), body.Theme)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"script": script})
}
