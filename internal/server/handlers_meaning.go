package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bloomery/backend/internal/meaning"
)

func (a *App) createMeaning(c *gin.Context) {
	if a.meanings == nil {
		writeError(c, http.StatusServiceUnavailable, "Meaning generation is not configured")
		return
	}
	var info meaning.Info
	if !mustJSON(c, &info) {
		return
	}
	if err := info.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	if streaming, _ := strconv.ParseBool(c.Query("stream")); streaming {
		a.streamMeaning(c, info)
		return
	}

	result, err := a.meanings.Generate(c.Request.Context(), info, nil)
	if err != nil {
		a.logger.Error("meaning generation failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to generate meaning")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success(),
		"meaning": result.Meaning,
		"source":  result.Source,
		"cached":  result.Cached,
		"error":   result.Error,
	})
}

func (a *App) streamMeaning(c *gin.Context, info meaning.Info) {
	startEventStream(c)
	result, err := a.meanings.Generate(c.Request.Context(), info, func(chunk string) {
		a.metrics.LLMChunks.Inc()
		c.SSEvent("chunk", gin.H{"text": chunk})
		c.Writer.Flush()
	})
	if err != nil {
		c.SSEvent("error", gin.H{"detail": "Failed to generate meaning", "status": http.StatusInternalServerError})
		c.Writer.Flush()
		return
	}
	if c.Request.Context().Err() != nil {
		return
	}
	c.SSEvent("result", result)
	c.Writer.Flush()
}
