package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
)

type webCallRequest struct {
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
}

// WebCall has the receptionist call a number entered in the web widget.
func (h *Handlers) WebCall(c *gin.Context) {
	var req webCallRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn("bad web call request", zap.String("contentType", c.ContentType()), zap.Error(err))
		if c.ContentType() == gin.MIMEJSON {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Phone number is required"})
		return
	}
	logger.Info("web call requested", zap.String("to", phone))

	if !h.twilio.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Twilio is not configured. Web calling is unavailable.",
		})
		return
	}

	call, err := h.twilio.CreateCall(c.Request.Context(), phone, h.baseURL(c))
	if err != nil {
		logger.Error("failed to initiate call", zap.String("to", phone), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to initiate call. Please try again.",
		})
		return
	}

	h.rec.RecordOutbound(c.Request.Context(), call.SID, phone)
	logger.Info("call initiated", zap.String("callSid", call.SID), zap.String("to", phone))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"callSid": call.SID,
		"message": "Call initiated successfully",
	})
}
