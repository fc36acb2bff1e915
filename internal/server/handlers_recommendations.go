package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bloomery/backend/internal/catalog"
	"bloomery/backend/internal/llm"
	"bloomery/backend/internal/recommend"
)

type recommendationRequest struct {
	Messages []recommend.Message `json:"messages"`
}

func (a *App) createRecommendation(c *gin.Context) {
	messages, ok := a.bindConversation(c)
	if !ok {
		return
	}

	result, err := a.recommender.Generate(c.Request.Context(), messages, nil)
	if err != nil {
		if isCallerGone(c.Request.Context(), err) {
			a.recordRecommendation("cancelled")
			c.Abort()
			return
		}
		a.writeRecommendationError(c, err)
		return
	}

	a.recordRecommendation("ok")
	c.JSON(http.StatusOK, gin.H{
		"id":       uuid.NewString(),
		"text":     result.Text,
		"bouquets": result.Bouquets,
	})
}

// streamRecommendation answers with server-sent events: "chunk" per text
// delta, "suggestions" whenever the running ranking changes, then a single
// "result" or "error".
func (a *App) streamRecommendation(c *gin.Context) {
	messages, ok := a.bindConversation(c)
	if !ok {
		return
	}

	messageID := uuid.NewString()
	startEventStream(c)

	result, err := a.recommender.Generate(c.Request.Context(), messages, func(update recommend.Update) {
		switch update.Kind {
		case recommend.UpdateChunk:
			a.metrics.LLMChunks.Inc()
			c.SSEvent("chunk", gin.H{"id": messageID, "text": update.Chunk})
		case recommend.UpdateSuggestions:
			c.SSEvent("suggestions", gin.H{"id": messageID, "bouquets": update.Bouquets})
		}
		c.Writer.Flush()
	})
	if err != nil {
		if isCallerGone(c.Request.Context(), err) {
			a.recordRecommendation("cancelled")
			return
		}
		status, body := a.recommendationFailure(err)
		body["status"] = status
		c.SSEvent("error", body)
		c.Writer.Flush()
		return
	}

	a.recordRecommendation("ok")
	c.SSEvent("result", gin.H{
		"id":       messageID,
		"text":     result.Text,
		"bouquets": result.Bouquets,
	})
	c.Writer.Flush()
}

func (a *App) bindConversation(c *gin.Context) ([]recommend.Message, bool) {
	if a.recommender == nil {
		writeError(c, http.StatusServiceUnavailable, "Recommendations are not configured")
		return nil, false
	}
	var req recommendationRequest
	if !mustJSON(c, &req) {
		a.recordRecommendation("invalid")
		return nil, false
	}
	if err := recommend.ValidateConversation(req.Messages); err != nil {
		a.recordRecommendation("invalid")
		writeError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req.Messages, true
}

func startEventStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
}

func (a *App) writeRecommendationError(c *gin.Context, err error) {
	status, body := a.recommendationFailure(err)
	c.AbortWithStatusJSON(status, body)
}

// recommendationFailure maps a Generate error to an HTTP status and a body
// carrying the customer-facing message, the fallback suggestions and any
// partial reply.
func (a *App) recommendationFailure(err error) (int, gin.H) {
	if recommend.IsValidation(err) {
		a.recordRecommendation("invalid")
		return http.StatusBadRequest, gin.H{"detail": err.Error()}
	}

	kind := llm.KindOf(err)
	a.recordRecommendation(string(kind))

	body := gin.H{
		"detail":   recommend.MessageGeneric,
		"kind":     string(kind),
		"bouquets": fallbackSuggestions(),
	}
	var genErr *recommend.Error
	if errors.As(err, &genErr) {
		body["detail"] = genErr.Message
		if genErr.Partial != "" {
			body["partial"] = genErr.Partial
		}
	}

	switch kind {
	case llm.KindCredentials, llm.KindQuota:
		return http.StatusServiceUnavailable, body
	case llm.KindRateLimit:
		return http.StatusTooManyRequests, body
	case llm.KindTimeout:
		return http.StatusGatewayTimeout, body
	default:
		return http.StatusBadGateway, body
	}
}

func fallbackSuggestions() []catalog.Bouquet {
	return recommend.Fallback(recommend.MaxRecommendations)
}

func isCallerGone(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func (a *App) recordRecommendation(outcome string) {
	a.metrics.Recommendations.WithLabelValues(outcome).Inc()
}
