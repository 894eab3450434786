package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"motionedit/cssmodel"
	"motionedit/logger"
	"motionedit/render"
	"motionedit/scenestore"
	"motionedit/session"
	"motionedit/timeline"
)

func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/", s.handleInfo)

	e.POST("/sessions", s.handleCreateSession)
	e.DELETE("/sessions/:id", s.handleDeleteSession)
	e.GET("/sessions/:id/code", s.handleGetCode)
	e.PUT("/sessions/:id/code", s.handleReplaceCode)
	e.PUT("/sessions/:id/css", s.handleReplaceCSS)
	e.GET("/sessions/:id/tracks", s.handleTracks)
	e.POST("/sessions/:id/tracks/move", s.handleTrackMove)
	e.POST("/sessions/:id/tracks/resize", s.handleTrackResize)
	e.POST("/sessions/:id/reposition", s.handleReposition)
	e.POST("/sessions/:id/playback", s.handlePlayback)
	e.GET("/sessions/:id/events", s.handleEvents)
	e.POST("/sessions/:id/assist", s.handleAssist)
	e.POST("/sessions/:id/export", s.handleExport)

	e.GET("/scenes", s.handleListScenes)
	e.GET("/scenes/:name", s.handleGetScene)
	e.POST("/scenes", s.handleSaveScene)
	e.DELETE("/scenes/:name", s.handleDeleteScene)
}

type errorBody struct {
	Error string `json:"error"`
}

func errJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{Error: msg})
}

func (s *Server) handleInfo(c echo.Context) error {
	logger.Debug("HTTP info requested", "remote_addr", c.RealIP())
	info := map[string]any{
		"name":    s.config.Name,
		"version": s.config.Version,
		"type":    "motionedit",
		"capabilities": map[string]any{
			"assist": true,
			"export": true,
			"scenes": true,
			"events": "/sessions/:id/events",
		},
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) lookupSession(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, errJSON(c, http.StatusNotFound, "unknown session")
	}
	return sess, nil
}

type sessionView struct {
	ID            string            `json:"id"`
	Tracks        []cssmodel.Track  `json:"tracks"`
	SceneDuration float64           `json:"scene_duration"`
	Code          session.CodeState `json:"code"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:            sess.ID,
		Tracks:        sess.Tracks(),
		SceneDuration: sess.SceneDuration(),
		Code:          sess.Code(),
	}
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var req session.CodeState
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	sess, err := s.sessions.Create(req)
	if err != nil {
		logger.Error("Failed to create session", "error", err)
		return errJSON(c, http.StatusInternalServerError, "failed to create session")
	}
	logger.Info("Session created", "session_id", sess.ID, "tracks", len(sess.Tracks()))
	return c.JSON(http.StatusCreated, viewOf(sess))
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.sessions.Get(id); !ok {
		return errJSON(c, http.StatusNotFound, "unknown session")
	}
	s.sessions.Remove(id)
	logger.Info("Session removed", "session_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetCode(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.Code())
}

func (s *Server) handleReplaceCode(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	var req session.CodeState
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	sess.ReplaceCode(req)
	return c.JSON(http.StatusOK, viewOf(sess))
}

type cssRequest struct {
	CSS string `json:"css"`
}

// handleReplaceCSS serves the editor's stylesheet pane: CSS changes alone,
// markup untouched.
func (s *Server) handleReplaceCSS(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	var req cssRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	sess.ReplaceCSS(req.CSS)
	return c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) handleTracks(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"tracks":         sess.Tracks(),
		"scene_duration": sess.SceneDuration(),
	})
}

type trackGestureRequest struct {
	Selector string  `json:"selector"`
	DeltaPx  float64 `json:"delta_px"`
	ScalePpx float64 `json:"scale_ppx"`
}

func (s *Server) findTrack(sess *session.Session, selector string) (cssmodel.Track, bool) {
	for _, tr := range sess.Tracks() {
		if tr.Selector == selector {
			return tr, true
		}
	}
	return cssmodel.Track{}, false
}

func (s *Server) handleTrackMove(c echo.Context) error {
	return s.handleTrackGesture(c, false)
}

func (s *Server) handleTrackResize(c echo.Context) error {
	return s.handleTrackGesture(c, true)
}

func (s *Server) handleTrackGesture(c echo.Context, resize bool) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	var req trackGestureRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ScalePpx <= 0 {
		return errJSON(c, http.StatusBadRequest, "scale_ppx must be positive")
	}
	track, ok := s.findTrack(sess, req.Selector)
	if !ok {
		return errJSON(c, http.StatusNotFound, "unknown track selector")
	}

	scale := timeline.Scale{PixelsPerSecond: req.ScalePpx}
	var applied float64
	if resize {
		g := timeline.NewResizeGesture(sess, scale, track)
		applied, err = g.Update(req.DeltaPx)
		g.End()
	} else {
		g := timeline.NewMoveGesture(sess, scale, track)
		applied, err = g.Update(req.DeltaPx)
		g.End()
	}
	if err != nil {
		logger.Error("Track gesture failed", "session_id", sess.ID, "selector", req.Selector, "error", err)
		return errJSON(c, http.StatusInternalServerError, "failed to apply gesture")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"applied":        applied,
		"tracks":         sess.Tracks(),
		"scene_duration": sess.SceneDuration(),
	})
}

type repositionRequest struct {
	Selector string  `json:"selector"`
	XPercent float64 `json:"x_percent"`
	YPercent float64 `json:"y_percent"`
}

func (s *Server) handleReposition(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	var req repositionRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Selector == "" {
		return errJSON(c, http.StatusBadRequest, "selector cannot be empty")
	}
	sess.Reposition(req.Selector, req.XPercent, req.YPercent)
	return c.JSON(http.StatusOK, sess.Code())
}

type playbackRequest struct {
	Action   string  `json:"action"`
	Time     float64 `json:"time"`
	OffsetPx float64 `json:"offset_px"`
	ScalePpx float64 `json:"scale_ppx"`
}

func (s *Server) handlePlayback(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	var req playbackRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	driver := sess.Playback()
	switch req.Action {
	case "play":
		driver.Play()
	case "pause":
		driver.Pause()
	case "toggle":
		driver.Toggle()
	case "seek":
		driver.Seek(req.Time)
	case "scrub":
		// Playhead drag: pauses first, then seeks to the pixel under the pointer.
		if req.ScalePpx <= 0 {
			return errJSON(c, http.StatusBadRequest, "scale_ppx must be positive")
		}
		g := timeline.NewPlayheadGesture(driver, timeline.Scale{PixelsPerSecond: req.ScalePpx})
		g.Update(req.OffsetPx)
	default:
		return errJSON(c, http.StatusBadRequest, fmt.Sprintf("unknown playback action %q", req.Action))
	}
	return c.JSON(http.StatusOK, driver.State())
}

func (s *Server) handleEvents(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return errJSON(c, http.StatusInternalServerError, "SSE stream is not available")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := sess.Events()
	defer cancel()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case ev, open := <-events:
			if !open {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("Failed to marshal preview event", "session_id", sess.ID, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(c.Response().Writer, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

type assistRequest struct {
	Prompt string `json:"prompt"`
}

type assistResponse struct {
	Explanation string            `json:"explanation"`
	Code        session.CodeState `json:"code"`
	Tracks      []cssmodel.Track  `json:"tracks"`
}

func (s *Server) handleAssist(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	var req assistRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		return errJSON(c, http.StatusBadRequest, "prompt cannot be empty")
	}

	current := sess.Code()
	result, err := s.assist.Generate(c.Request().Context(), req.Prompt, current.HTML, current.CSS)
	if err != nil {
		logger.Error("Assist generation failed", "session_id", sess.ID, "error", err)
		return errJSON(c, http.StatusBadGateway, "code generation failed")
	}

	// Missing fences mean the reply keeps that part of the current code.
	next := current
	if result.HTML != "" {
		next.HTML = result.HTML
	}
	if result.CSS != "" {
		next.CSS = result.CSS
	}
	sess.ReplaceCode(next)
	logger.Info("Assist generation applied", "session_id", sess.ID, "tracks", len(sess.Tracks()))

	return c.JSON(http.StatusOK, assistResponse{
		Explanation: result.Explanation,
		Code:        sess.Code(),
		Tracks:      sess.Tracks(),
	})
}

func (s *Server) handleExport(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	code := sess.Code()
	job := render.Job{
		HTML:     code.HTML,
		CSS:      code.CSS,
		Duration: sess.SceneDuration(),
		FPS:      s.config.Render.FPS,
		Width:    s.config.Render.Width,
		Height:   s.config.Render.Height,
	}
	timeout := time.Duration(s.config.Render.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	logger.Info("Video export started", "session_id", sess.ID, "frames", job.FrameCount())
	video, err := s.renderer.Render(ctx, job)
	if err != nil {
		logger.Error("Video export failed", "session_id", sess.ID, "error", err)
		return errJSON(c, http.StatusBadGateway, "video export failed")
	}
	logger.Info("Video export finished", "session_id", sess.ID, "bytes", len(video))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="scene.mp4"`)
	return c.Blob(http.StatusOK, "video/mp4", video)
}

func (s *Server) handleListScenes(c echo.Context) error {
	scenes, err := s.scenes.List()
	if err != nil {
		logger.Error("Failed to list scenes", "error", err)
		return errJSON(c, http.StatusInternalServerError, "failed to list scenes")
	}
	return c.JSON(http.StatusOK, scenes)
}

func (s *Server) handleGetScene(c echo.Context) error {
	scene, err := s.scenes.Load(c.Param("name"))
	if err != nil {
		if errors.Is(err, scenestore.ErrNotFound) {
			return errJSON(c, http.StatusNotFound, "unknown scene")
		}
		logger.Error("Failed to load scene", "scene", c.Param("name"), "error", err)
		return errJSON(c, http.StatusInternalServerError, "failed to load scene")
	}
	return c.JSON(http.StatusOK, scene)
}

func (s *Server) handleSaveScene(c echo.Context) error {
	var scene scenestore.Scene
	if err := c.Bind(&scene); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := s.scenes.Save(scene); err != nil {
		logger.Error("Failed to save scene", "scene", scene.Name, "error", err)
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	logger.Info("Scene saved", "scene", scene.Name)
	return c.JSON(http.StatusCreated, scene)
}

func (s *Server) handleDeleteScene(c echo.Context) error {
	if err := s.scenes.Delete(c.Param("name")); err != nil {
		if errors.Is(err, scenestore.ErrNotFound) {
			return errJSON(c, http.StatusNotFound, "unknown scene")
		}
		logger.Error("Failed to delete scene", "scene", c.Param("name"), "error", err)
		return errJSON(c, http.StatusInternalServerError, "failed to delete scene")
	}
	return c.NoContent(http.StatusNoContent)
}
