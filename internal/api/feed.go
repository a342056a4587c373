package api

import (
	"net/http" // HTTP status codes

	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/service"    // Feed use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// PostRequest creates a wall post
type PostRequest struct {
	Content  string `json:"content" binding:"required"` // Post text
	ImageURL string `json:"image_url"`                  // Optional picture
}

// CommentRequest adds a comment to a post
type CommentRequest struct {
	Content string `json:"content" binding:"required"` // Comment text
}

func ListPostsHandler(feed *service.FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := paginate(c)
		list, err := feed.ListPosts(c.Request.Context(), p.window())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.body("posts", list.Items, list.Total))
	}
}

func CreatePostHandler(feed *service.FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		post, err := feed.CreatePost(c.Request.Context(), middleware.UserID(c), req.Content, req.ImageURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"post": post})
	}
}

// ToggleLikeHandler likes a post, or unlikes it when already liked
func ToggleLikeHandler(feed *service.FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		liked, post, err := feed.ToggleLike(c.Request.Context(), id, middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": liked, "post": post})
	}
}

func ListCommentsHandler(feed *service.FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		comments, err := feed.Comments(c.Request.Context(), id, paginate(c).window())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
	}
}

func AddCommentHandler(feed *service.FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req CommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		comment, err := feed.AddComment(c.Request.Context(), id, middleware.UserID(c), req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}
