package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/flashsync/ingestcore/internal/ingest"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

var (
	errMissingDispatcher = errors.New("dispatcher dependency required")
	errMissingValidator  = errors.New("batch validator dependency required")
	errMissingUserID     = errors.New("X-User-Id header missing or invalid")
	errMissingClientID   = errors.New("X-Client-Id header missing or invalid")
)

// requestIDMiddleware stamps every request with a correlation id, generating
// one when the caller didn't already supply it, and echoes it back on the
// response so client-side logs and server-side logs can be joined.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// Dependencies wires the collaborators the HTTP entrypoint needs. Identity
// assignment and authentication both happen upstream of this package: the
// X-User-Id and X-Client-Id headers arrive pre-authenticated.
type Dependencies struct {
	Dispatcher     *ingest.Dispatcher
	BatchValidator *ingest.BatchValidator
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewHTTPHandler builds the gin router exposing the operation ingestion endpoint.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Dispatcher == nil {
		return nil, errMissingDispatcher
	}
	if deps.BatchValidator == nil {
		return nil, errMissingValidator
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allowedOrigins := deps.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "X-User-Id", "X-Client-Id"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		dispatcher: deps.Dispatcher,
		validator:  deps.BatchValidator,
		logger:     logger,
	}

	router.POST("/v1/operations", handler.handleOperations)

	return router, nil
}

type httpHandler struct {
	dispatcher *ingest.Dispatcher
	validator  *ingest.BatchValidator
	logger     *zap.Logger
}

type operationRequestPayload struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

type batchRequestPayload struct {
	Operations []operationRequestPayload `json:"operations"`
}

type operationResultPayload struct {
	Index int    `json:"index"`
	SeqNo int64  `json:"seqNo,omitempty"`
	Error string `json:"error,omitempty"`
}

type batchResponsePayload struct {
	Results []operationResultPayload `json:"results"`
}

func (h *httpHandler) handleOperations(c *gin.Context) {
	userID, err := ingest.NewUserID(c.GetHeader("X-User-Id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errMissingUserID.Error()})
		return
	}
	clientID, err := ingest.NewClientID(c.GetHeader("X-Client-Id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errMissingClientID.Error()})
		return
	}

	var request batchRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	ops := make([]ingest.Operation, 0, len(request.Operations))
	for _, raw := range request.Operations {
		ts, err := ingest.NewTimestamp(raw.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_timestamp"})
			return
		}
		ops = append(ops, ingest.Operation{
			Type:      ingest.OperationType(raw.Type),
			Timestamp: ts,
			UserID:    userID,
			ClientID:  clientID,
			Payload:   raw.Payload,
		})
	}

	if err := h.validator.Validate(ops); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorMessage(err)})
		return
	}

	results, err := h.dispatcher.ApplyBatch(userID, ops)
	if err != nil {
		h.logger.Error("batch apply failed",
			zap.Error(err),
			zap.String("userId", userID.String()),
			zap.String("requestId", c.GetString(requestIDHeader)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "apply_failed"})
		return
	}

	response := batchResponsePayload{Results: make([]operationResultPayload, 0, len(results))}
	for _, result := range results {
		item := operationResultPayload{Index: result.Index, SeqNo: result.SeqNo}
		if result.Err != nil {
			item.Error = errorMessage(result.Err)
		}
		response.Results = append(response.Results, item)
	}

	c.JSON(http.StatusOK, response)
}

// errorMessage surfaces a *ingest.CoreError's own Message verbatim (the
// wire contract for messages like "Too many operations" requires the exact
// text, not CoreError's own [CODE] prefix), falling back to Error() for
// anything else.
func errorMessage(err error) string {
	var coreErr *ingest.CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Message
	}
	return strings.TrimSpace(err.Error())
}
