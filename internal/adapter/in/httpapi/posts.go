package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"barefoot/internal/service"
	"barefoot/pkg/logger"

	"github.com/gin-gonic/gin"
)

type listPostsQuery struct {
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// postForm is accepted both as JSON and as multipart form fields.
type postForm struct {
	Title     string `json:"title" form:"title"`
	Content   string `json:"content" form:"content"`
	ImagePath string `json:"image_path" form:"image_path"`
}

func (h *Handler) listPosts(c *gin.Context) {
	var q listPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid query parameters"})
		return
	}

	posts, err := h.posts.ListPosts(c.Request.Context(), service.ListPostsRequest{
		Search:   q.Search,
		Sort:     q.Sort,
		Order:    q.Order,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) createPost(c *gin.Context) {
	form, img, ok := h.bindPost(c)
	if !ok {
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), service.CreatePostRequest{
		Title:     form.Title,
		Content:   form.Content,
		ImagePath: form.ImagePath,
		Image:     img,
	})
	if err != nil {
		writeError(c, err, http.StatusUnprocessableEntity)
		return
	}

	logger.FromContext(c.Request.Context()).Info("post created", "post_id", post.ID)
	c.Header("Location", fmt.Sprintf("/posts/%d", post.ID))
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	form, img, ok := h.bindPost(c)
	if !ok {
		return
	}

	_, err := h.posts.UpdatePost(c.Request.Context(), id, service.UpdatePostRequest{
		Title:     form.Title,
		Content:   form.Content,
		ImagePath: form.ImagePath,
		Image:     img,
	})
	if err != nil {
		writeError(c, err, http.StatusUnprocessableEntity)
		return
	}

	logger.FromContext(c.Request.Context()).Info("post updated", "post_id", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), id); err != nil {
		writeError(c, err, http.StatusUnprocessableEntity)
		return
	}

	logger.FromContext(c.Request.Context()).Info("post deleted", "post_id", id)
	c.Status(http.StatusNoContent)
}

// postID parses the :id segment. Anything that is not an integer names no post.
func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		return 0, false
	}
	return id, true
}

func (h *Handler) bindPost(c *gin.Context) (postForm, *service.ImageUpload, bool) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return postForm{}, nil, false
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return form, nil, true
	}

	img, err := h.readImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed image upload"})
		return postForm{}, nil, false
	}
	return form, img, true
}

// readImage reads the optional "image" file. At most one byte past the limit
// is read so the service can reject oversized uploads.
func (h *Handler) readImage(c *gin.Context) (*service.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	return &service.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
