package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"auction-dashboard/internal/dashboard"
	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/internal/session"
	"auction-dashboard/internal/storage"
	"auction-dashboard/internal/submission"
	"auction-dashboard/internal/view"
	"auction-dashboard/internal/viewer"
	"auction-dashboard/services/dashboard/helpers"
	"auction-dashboard/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_sessions.go -package=handler auction-dashboard/services/dashboard/handler SessionManager

// maxImageBytes bounds a single uploaded image
const maxImageBytes = 10 << 20

// formTimeLayouts are accepted for the submission start and end times
var formTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

type SessionManager interface {
	Start(ctx context.Context, email string) (*session.Session, error)
	Get(id string) (*session.Session, error)
	End(id string) error
}

type DashboardHandler struct {
	sessions        SessionManager
	submitter       dashboard.Submitter[submission.Form]
	defaultPageSize int
}

func NewDashboardHandler(sessions SessionManager, submitter dashboard.Submitter[submission.Form], defaultPageSize int) *DashboardHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = view.DefaultPageSize
	}
	return &DashboardHandler{sessions: sessions, submitter: submitter, defaultPageSize: defaultPageSize}
}

// session loads the session named by :sid, answering the request itself on failure
func (h *DashboardHandler) session(c *gin.Context, handlerName string) (*session.Session, bool) {
	sid := c.Param("sid")
	sess, err := h.sessions.Get(sid)
	if err != nil {
		helpers.RespondError(c, handlerName, err, map[string]any{"session_id": sid})
		return nil, false
	}
	return sess, true
}

// screen loads the session and resolves :screen for its viewer
func (h *DashboardHandler) screen(c *gin.Context, handlerName string) (*session.Session, screenOps, bool) {
	sess, ok := h.session(c, handlerName)
	if !ok {
		return nil, nil, false
	}
	ops, err := screenFor(sess, c.Param("screen"))
	if err != nil {
		helpers.RespondError(c, handlerName, err, map[string]any{"session_id": sess.ID, "role": sess.Viewer.Role()})
		return nil, nil, false
	}
	return sess, ops, true
}

// StartSessionHandler handles POST /sessions
func (h *DashboardHandler) StartSessionHandler(c *gin.Context) {
	var req helpers.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "StartSessionHandler", err)
		return
	}

	sess, err := h.sessions.Start(c.Request.Context(), req.Email)
	if err != nil {
		helpers.RespondError(c, "StartSessionHandler", err, map[string]any{"email": req.Email})
		return
	}

	resp := helpers.SessionResponse{
		SessionID:   sess.ID,
		Role:        string(sess.Viewer.Role()),
		DisplayName: viewer.DisplayName(sess.Viewer),
		Screens:     sess.Dashboard.Screens(),
	}
	utils.JSONResponse(c, http.StatusCreated, resp, "session started")
	helpers.LogSuccess("StartSessionHandler", "session started", map[string]any{
		"session_id": sess.ID,
		"role":       resp.Role,
	})
}

// EndSessionHandler handles DELETE /sessions/:sid
func (h *DashboardHandler) EndSessionHandler(c *gin.Context) {
	sid := c.Param("sid")
	if err := h.sessions.End(sid); err != nil {
		helpers.RespondError(c, "EndSessionHandler", err, map[string]any{"session_id": sid})
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "session ended")
}

// GetScreenHandler handles GET /sessions/:sid/screens/:screen. The first
// request loads the collection; later requests only re-filter it.
func (h *DashboardHandler) GetScreenHandler(c *gin.Context) {
	sess, ops, ok := h.screen(c, "GetScreenHandler")
	if !ok {
		return
	}
	q, err := helpers.ParseQuery(c, h.defaultPageSize)
	if err != nil {
		helpers.RespondError(c, "GetScreenHandler", err, map[string]any{"session_id": sess.ID})
		return
	}

	// fetch failures surface through the rendered state
	if err := ops.open(c.Request.Context()); errors.Is(err, marketerrors.ErrClosed) {
		helpers.RespondError(c, "GetScreenHandler", err, map[string]any{"session_id": sess.ID})
		return
	}

	resp, err := ops.render(q)
	if err != nil {
		helpers.RespondError(c, "GetScreenHandler", err, map[string]any{
			"session_id": sess.ID,
			"screen":     c.Param("screen"),
		})
		return
	}
	utils.JSONResponse(c, http.StatusOK, resp, "screen loaded")
}

// RefreshScreenHandler handles POST /sessions/:sid/screens/:screen/refresh.
// A failed refresh keeps the last good rows on the screen.
func (h *DashboardHandler) RefreshScreenHandler(c *gin.Context) {
	sess, ops, ok := h.screen(c, "RefreshScreenHandler")
	if !ok {
		return
	}
	fields := map[string]any{"session_id": sess.ID, "screen": c.Param("screen")}

	// the refreshed page honours the caller's current filters
	q, err := helpers.ParseQuery(c, h.defaultPageSize)
	if err != nil {
		helpers.RespondError(c, "RefreshScreenHandler", err, fields)
		return
	}
	if err := ops.refresh(c.Request.Context()); err != nil {
		helpers.RespondError(c, "RefreshScreenHandler", err, fields)
		return
	}
	resp, err := ops.render(q)
	if err != nil {
		helpers.RespondError(c, "RefreshScreenHandler", err, fields)
		return
	}
	utils.JSONResponse(c, http.StatusOK, resp, "screen refreshed")
	helpers.LogSuccess("RefreshScreenHandler", "screen refreshed", fields)
}

// EditItemHandler handles PATCH /sessions/:sid/screens/:screen/items/:id
func (h *DashboardHandler) EditItemHandler(c *gin.Context) {
	sess, ops, ok := h.screen(c, "EditItemHandler")
	if !ok {
		return
	}
	id := c.Param("id")
	fields := map[string]any{"session_id": sess.ID, "screen": c.Param("screen"), "item_id": id}

	updated, err := ops.edit(c, id)
	if err != nil {
		helpers.RespondError(c, "EditItemHandler", err, fields)
		return
	}
	utils.JSONResponse(c, http.StatusOK, updated, "item updated")
	helpers.LogSuccess("EditItemHandler", "item updated", fields)
}

// DeleteItemHandler handles DELETE /sessions/:sid/screens/:screen/items/:id
func (h *DashboardHandler) DeleteItemHandler(c *gin.Context) {
	sess, ops, ok := h.screen(c, "DeleteItemHandler")
	if !ok {
		return
	}
	id := c.Param("id")
	fields := map[string]any{"session_id": sess.ID, "screen": c.Param("screen"), "item_id": id}

	if err := ops.remove(c.Request.Context(), id); err != nil {
		helpers.RespondError(c, "DeleteItemHandler", err, fields)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"id": id}, "item deleted")
	helpers.LogSuccess("DeleteItemHandler", "item deleted", fields)
}

// SelectItemHandler handles PUT /sessions/:sid/screens/:screen/selection/:id
func (h *DashboardHandler) SelectItemHandler(c *gin.Context) {
	sess, ops, ok := h.screen(c, "SelectItemHandler")
	if !ok {
		return
	}
	item, err := ops.selectRow(c.Param("id"))
	if err != nil {
		helpers.RespondError(c, "SelectItemHandler", err, map[string]any{"session_id": sess.ID, "item_id": c.Param("id")})
		return
	}
	utils.JSONResponse(c, http.StatusOK, item, "item selected")
}

// GetSelectionHandler handles GET /sessions/:sid/screens/:screen/selection
func (h *DashboardHandler) GetSelectionHandler(c *gin.Context) {
	_, ops, ok := h.screen(c, "GetSelectionHandler")
	if !ok {
		return
	}
	item, selected := ops.selected()
	if !selected {
		utils.JSONResponse(c, http.StatusOK, nil, "no item selected")
		return
	}
	utils.JSONResponse(c, http.StatusOK, item, "selection retrieved")
}

// ClearSelectionHandler handles DELETE /sessions/:sid/screens/:screen/selection
func (h *DashboardHandler) ClearSelectionHandler(c *gin.Context) {
	_, ops, ok := h.screen(c, "ClearSelectionHandler")
	if !ok {
		return
	}
	ops.deselect()
	utils.JSONResponse(c, http.StatusOK, nil, "selection cleared")
}

// SubmitAuctionHandler handles POST /sessions/:sid/submissions (multipart)
func (h *DashboardHandler) SubmitAuctionHandler(c *gin.Context) {
	sess, ok := h.session(c, "SubmitAuctionHandler")
	if !ok {
		return
	}
	if _, isSeller := sess.Viewer.(viewer.Seller); !isSeller {
		helpers.RespondError(c, "SubmitAuctionHandler", fmt.Errorf("submit auction: %w", marketerrors.ErrForbidden),
			map[string]any{"session_id": sess.ID, "role": sess.Viewer.Role()})
		return
	}
	form, err := parseSubmission(c)
	if err != nil {
		helpers.RespondError(c, "SubmitAuctionHandler", err, map[string]any{"session_id": sess.ID})
		return
	}

	created, err := dashboard.SubmitAuction(c.Request.Context(), sess.Dashboard, h.submitter, form)
	if err != nil {
		helpers.RespondError(c, "SubmitAuctionHandler", err, map[string]any{"session_id": sess.ID})
		return
	}
	utils.JSONResponse(c, http.StatusCreated, created, "auction submitted for review")
	helpers.LogSuccess("SubmitAuctionHandler", "auction submitted", map[string]any{
		"session_id": sess.ID,
		"auction_id": created.ID,
	})
}

// ListNotificationsHandler handles GET /sessions/:sid/notifications
func (h *DashboardHandler) ListNotificationsHandler(c *gin.Context) {
	sess, ok := h.session(c, "ListNotificationsHandler")
	if !ok {
		return
	}
	items := sess.Inbox.Drain()
	utils.JSONResponse(c, http.StatusOK, helpers.NotificationsResponse{Count: len(items), Items: items}, "notifications retrieved")
}

func parseSubmission(c *gin.Context) (submission.Form, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return submission.Form{}, fmt.Errorf("%w: multipart form expected: %w", marketerrors.ErrValidation, err)
	}

	f := submission.Form{
		Name:     c.PostForm("name"),
		Category: c.PostForm("category"),
	}
	if raw := strings.TrimSpace(c.PostForm("startingPrice")); raw != "" {
		if f.StartingPrice, err = strconv.ParseFloat(raw, 64); err != nil {
			return submission.Form{}, fmt.Errorf("%w: startingPrice must be a number", marketerrors.ErrValidation)
		}
	}
	if f.StartTime, err = parseFormTime(c.PostForm("startTime")); err != nil {
		return submission.Form{}, fmt.Errorf("%w: startTime: %w", marketerrors.ErrValidation, err)
	}
	if f.EndTime, err = parseFormTime(c.PostForm("endTime")); err != nil {
		return submission.Form{}, fmt.Errorf("%w: endTime: %w", marketerrors.ErrValidation, err)
	}

	for _, fh := range mf.File["images"] {
		img, err := readImage(fh)
		if err != nil {
			return submission.Form{}, fmt.Errorf("%w: image %s: %w", marketerrors.ErrValidation, fh.Filename, err)
		}
		f.Images = append(f.Images, img)
	}
	return f, nil
}

// parseFormTime returns the zero time for an empty value; validation reports it
func parseFormTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range formTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", raw)
}

func readImage(fh *multipart.FileHeader) (storage.Image, error) {
	if fh.Size > maxImageBytes {
		return storage.Image{}, fmt.Errorf("larger than %d bytes", maxImageBytes)
	}
	file, err := fh.Open()
	if err != nil {
		return storage.Image{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return storage.Image{}, err
	}
	return storage.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
