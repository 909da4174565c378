// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// requestIDHeader is the header a caller may set to correlate its own logs
// with the engine's; getOrCreateRequestID generates one when absent.
const requestIDHeader = "X-Request-ID"

// RequestID mirrors the teacher's getOrCreateRequestID helper as real
// middleware: every request gets a request_id in gin's context (and echoed
// back on the response) before any handler runs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func getOrCreateRequestID(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError renders a vocaberr-tagged error through the single
// Kind.HTTPStatus() switch. Only the tagged error's own Message reaches the
// wire — its wrapped Cause is for logs only, never serialized to a client.
func writeError(c *gin.Context, err error) {
	kind := vocaberr.KindOf(err)
	message := "internal error"
	var tagged *vocaberr.Error
	if errors.As(err, &tagged) {
		message = tagged.Message
	}
	c.JSON(kind.HTTPStatus(), ErrorResponse{Error: message, Code: string(kind)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: string(vocaberr.BadRequest)})
}
