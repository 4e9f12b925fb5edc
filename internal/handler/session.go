package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/bidding"
	"dealroom/internal/models"
	"dealroom/internal/session"
)

type SessionHandler struct {
	Finance *session.Service
	Bidding *bidding.Service
	Logger  *zap.Logger
}

func (h *SessionHandler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/sessions/:id/finance", h.finance)
	api.GET("/sessions/:id/bidding", h.biddingBoard)
}

type financeField struct {
	Field    string  `json:"field"`
	Unit     string  `json:"unit,omitempty"`
	Value    float64 `json:"value"`
	Approved bool    `json:"approved"`
}

type financeResponse struct {
	SessionID   string         `json:"session_id"`
	TeamID      int            `json:"team_id"`
	Fields      []financeField `json:"fields"`
	Valuation   float64        `json:"valuation"`
	AllApproved bool           `json:"all_approved"`
	Finalized   bool           `json:"finalized"`
}

// finance reconciles the session on read, so the API sees exactly what a
// terminal polling the same session would.
func (h *SessionHandler) finance(c *gin.Context) {
	sessionID := c.Param("id")
	teamID, err := strconv.Atoi(c.DefaultQuery("team", "1"))
	if err != nil {
		fail(c, http.StatusBadRequest, "team must be a number")
		return
	}

	snap, err := h.Finance.EnsureSession(c.Request.Context(), sessionID, teamID)
	if err != nil {
		h.Logger.Error("finance view failed", zap.String("session", sessionID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "session load failed")
		return
	}

	resp := financeResponse{
		SessionID:   sessionID,
		TeamID:      teamID,
		AllApproved: snap.AllApproved,
		Finalized:   snap.Finalized(),
	}
	for _, field := range models.InputFields {
		value, _ := snap.InputValue(field)
		resp.Fields = append(resp.Fields, financeField{
			Field:    field,
			Unit:     models.UnitFor(field),
			Value:    value,
			Approved: snap.FieldApproved(field),
		})
	}
	if len(snap.Outputs) > 0 {
		resp.Valuation = snap.Outputs[0].Valuation
	}
	ok(c, resp)
}

func (h *SessionHandler) biddingBoard(c *gin.Context) {
	sessionID := c.Param("id")

	board, err := h.Bidding.LoadBoard(c.Request.Context(), sessionID)
	if err != nil {
		h.Logger.Error("bidding view failed", zap.String("session", sessionID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "board load failed")
		return
	}

	ok(c, gin.H{
		"session_id":  sessionID,
		"pricing":     board.Pricing,
		"bids":        board.Bids,
		"outputs":     board.Outputs,
		"allocations": board.Allocations,
	})
}
