package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/s0up4200/qbtlang/exporter"
	"github.com/s0up4200/qbtlang/filter"
	"github.com/s0up4200/qbtlang/translator"
	"github.com/s0up4200/qbtlang/ts"
)

const maxMessagesLimit = 1000

type languageInfo struct {
	Language string `json:"language"`
	// Name is the language's name in its own language, e.g. "українська".
	Name        string  `json:"name,omitempty"`
	RightToLeft bool    `json:"rtl"`
	Messages    int     `json:"messages"`
	Completion  float64 `json:"completion"`
}

type translateResponse struct {
	Language    string `json:"language"`
	Context     string `json:"context"`
	Source      string `json:"source"`
	Comment     string `json:"comment,omitempty"`
	Translation string `json:"translation"`
	Translated  bool   `json:"translated"`
}

type messagesResponse struct {
	Language string          `json:"language"`
	Total    int             `json:"total"`
	Messages []exporter.Item `json:"messages"`
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) languages(c *gin.Context) {
	out := make([]languageInfo, 0, len(s.bundle.Languages()))
	for _, lang := range s.bundle.Languages() {
		tr, _ := s.bundle.Get(lang)
		st := tr.Catalog().Stats()
		out = append(out, languageInfo{
			Language:    lang,
			Name:        selfName(lang),
			RightToLeft: tr.RightToLeft(),
			Messages:    st.Messages,
			Completion:  st.Completion(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"languages": out})
}

func selfName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	return display.Self.Name(tag)
}

func (s *Server) presets(c *gin.Context) {
	out := make([]gin.H, 0, len(s.opts.Presets))
	for _, name := range s.filters.ListFilters() {
		f, _ := s.filters.GetFilter(name)
		out = append(out, gin.H{"name": name, "expression": f.Expression()})
	}
	c.JSON(http.StatusOK, gin.H{"presets": out})
}

// translations renders one key in every loaded language.
func (s *Server) translations(c *gin.Context) {
	key := ts.Key{Context: c.Query("context"), Source: c.Query("source"), Comment: c.Query("comment")}
	if key.Source == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("source is required"))
		return
	}

	out, err := s.bundle.Translations(key)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"context":      key.Context,
		"source":       key.Source,
		"comment":      key.Comment,
		"translations": out,
	})
}

// resolve maps the :lang parameter to a translator. "auto" negotiates
// from the Accept-Language header.
func (s *Server) resolve(c *gin.Context) (string, *translator.Translator) {
	lang := c.Param("lang")
	if lang == "auto" {
		matched, _ := s.bundle.Match(c.GetHeader("Accept-Language"))
		lang = matched
	}
	tr := s.bundle.Resolve(lang)
	if !tr.Loaded() {
		return "", tr
	}
	return tr.Catalog().Language, tr
}

func (s *Server) translate(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("source is required"))
		return
	}
	context := c.Query("context")
	comment := c.Query("comment")

	lang, tr := s.resolve(c)
	resp := translateResponse{
		Language: lang,
		Context:  context,
		Source:   source,
		Comment:  comment,
	}

	if nStr, ok := c.GetQuery("n"); ok {
		n, err := strconv.Atoi(nStr)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, errors.New("n must be an integer"))
			return
		}
		resp.Translation = tr.TranslatePlural(context, source, comment, n)
	} else {
		resp.Translation = tr.Translate(context, source, comment)
	}
	resp.Translated = tr.Index().Translated(context, source, comment)

	c.JSON(http.StatusOK, resp)
}

func (s *Server) stats(c *gin.Context) {
	lang, tr := s.resolve(c)
	if !tr.Loaded() {
		errorJSON(c, http.StatusNotFound, translator.ErrUnknownLanguage)
		return
	}

	st := tr.Catalog().Stats()
	c.JSON(http.StatusOK, gin.H{
		"language":   lang,
		"version":    tr.Catalog().Version,
		"contexts":   st.Contexts,
		"messages":   st.Messages,
		"finished":   st.Finished,
		"unfinished": st.Unfinished,
		"obsolete":   st.Obsolete,
		"completion": st.Completion(),
	})
}

func (s *Server) messages(c *gin.Context) {
	lang, tr := s.resolve(c)
	if !tr.Loaded() {
		errorJSON(c, http.StatusNotFound, translator.ErrUnknownLanguage)
		return
	}

	expression := c.Query("filter")
	preset := c.Query("preset")
	if expression != "" && preset != "" {
		errorJSON(c, http.StatusBadRequest, errors.New("filter and preset are mutually exclusive"))
		return
	}

	limit := maxMessagesLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			errorJSON(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxMessagesLimit)
	}

	entries := tr.Catalog().Entries()
	var err error
	switch {
	case preset != "":
		if _, ok := s.filters.GetFilter(preset); !ok {
			errorJSON(c, http.StatusBadRequest, errors.New("unknown preset: "+preset))
			return
		}
		entries, err = s.filters.EvaluateFilter(c.Request.Context(), preset, entries)
	case expression != "":
		var compiled filter.CompiledFilter
		compiled, err = s.filters.Compile(expression)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		entries, err = s.filters.Evaluate(c.Request.Context(), compiled, entries)
	}
	if err != nil {
		var evalErr *filter.EvaluationError
		if errors.As(err, &evalErr) {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	resp := messagesResponse{Language: lang, Total: len(entries), Messages: []exporter.Item{}}
	for _, e := range entries[:min(limit, len(entries))] {
		resp.Messages = append(resp.Messages, exporter.ItemFromEntry(e))
	}
	c.JSON(http.StatusOK, resp)
}
