package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"tutorial-service/dto"
	"tutorial-service/entities"
	"tutorial-service/service"
)

// TutorialHandler serves the tutorial REST API. Error and empty responses never
// carry a body.
type TutorialHandler struct {
	service service.Service
}

func NewTutorialHandler(service service.Service) *TutorialHandler {
	return &TutorialHandler{service: service}
}

func (h *TutorialHandler) Register(r gin.IRouter) {
	tutorials := r.Group("/tutorials")
	tutorials.GET("", h.List)
	tutorials.POST("", h.Create)
	tutorials.DELETE("", h.DeleteAll)
	tutorials.GET("/published", h.ListPublished)
	tutorials.GET("/:id", h.Get)
	tutorials.PUT("/:id", h.Update)
	tutorials.DELETE("/:id", h.Delete)
}

// List handles GET /tutorials?title=. An absent title lists everything; a
// present but empty title matches everything too.
func (h *TutorialHandler) List(c *gin.Context) {
	var title *string
	if value, ok := c.GetQuery("title"); ok {
		title = &value
	}

	tutorials, err := h.service.List(c.Request.Context(), title)
	if err != nil {
		h.fail(c, err, "failed to list tutorials")
		return
	}
	writeList(c, tutorials)
}

func (h *TutorialHandler) ListPublished(c *gin.Context) {
	tutorials, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list published tutorials")
		return
	}
	writeList(c, tutorials)
}

func (h *TutorialHandler) Get(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	tutorial, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to get tutorial")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

func (h *TutorialHandler) Create(c *gin.Context) {
	var req dto.TutorialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("invalid tutorial body")
		c.Status(http.StatusBadRequest)
		return
	}

	tutorial, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create tutorial")
		return
	}
	c.JSON(http.StatusCreated, tutorial)
}

func (h *TutorialHandler) Update(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	var req dto.TutorialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("invalid tutorial body")
		c.Status(http.StatusBadRequest)
		return
	}

	tutorial, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "failed to update tutorial")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

func (h *TutorialHandler) Delete(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete tutorial")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TutorialHandler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context()); err != nil {
		h.fail(c, err, "failed to delete tutorials")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TutorialHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrTutorialNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
	_ = c.Error(err)
	c.Status(http.StatusInternalServerError)
}

func writeList(c *gin.Context, tutorials []*entities.Tutorial) {
	if len(tutorials) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, tutorials)
}

func pathId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
