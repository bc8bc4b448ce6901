package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openkms/docchat-be/service"
	"github.com/openkms/docchat-be/types"
)

// IndexHandler exposes indexing pipeline controls over HTTP.
type IndexHandler struct {
	indexer *service.IndexerService
}

func NewIndexHandler(indexer *service.IndexerService) *IndexHandler {
	return &IndexHandler{
		indexer: indexer,
	}
}

// HandleIndex runs the full indexing pipeline, streaming progress as
// server-sent events and ending with the run stats.
func (h *IndexHandler) HandleIndex(c *gin.Context) {
	var opts types.IndexOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		opts = types.IndexOptions{EnableOCR: true}
	}

	progress := make(chan types.IndexProgress, 16)
	type indexResult struct {
		stats *types.IndexStats
		err   error
	}
	resultChan := make(chan indexResult, 1)
	go func() {
		stats, err := h.indexer.IndexDocuments(c.Request.Context(), opts, progress)
		resultChan <- indexResult{stats: stats, err: err}
	}()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case p := <-progress:
			jsonProgress, err := json.Marshal(p)
			if err != nil {
				continue
			}
			c.SSEvent("progress", string(jsonProgress))
			c.Writer.Flush()
		case result := <-resultChan:
			if result.err != nil {
				c.JSON(http.StatusInternalServerError, types.DataResponse{
					Status:  false,
					Message: result.err.Error(),
					Data:    result.stats,
				})
			} else {
				c.JSON(http.StatusOK, types.DataResponse{
					Status: true,
					Data:   result.stats,
				})
			}
			return
		}
	}
}

func (h *IndexHandler) HandleStats(c *gin.Context) {
	stats, err := h.indexer.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   stats,
	})
}

func (h *IndexHandler) HandleReset(c *gin.Context) {
	if err := h.indexer.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Vector store reset",
	})
}
