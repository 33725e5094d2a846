package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	commonhttp "github.com/AlibekovAA/smalltalk-feed/internal/common/http"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/jwtverify"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

type FeedQueries interface {
	ListAll(ctx context.Context, viewer *userdomain.ID) ([]domain.EnrichedView, error)
	ListPage(ctx context.Context, page int, viewer *userdomain.ID) ([]domain.EnrichedView, error)
	GetByID(ctx context.Context, id int64, viewer *userdomain.ID) (domain.EnrichedView, error)
	ListByAuthor(ctx context.Context, authorID userdomain.ID, viewer *userdomain.ID) ([]domain.EnrichedView, error)
}

type Ingester interface {
	Ingest(ctx context.Context, sub domain.Submission) (domain.EnrichedView, error)
}

type Liker interface {
	Like(ctx context.Context, postID int64, username, token string) (domain.EnrichedView, error)
	Unlike(ctx context.Context, postID int64, username, token string) (domain.EnrichedView, error)
}

type uploadRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Content  string `json:"content" validate:"required,max=1000"`
	Token    string `json:"token" validate:"required"`
}

type likeRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Token    string `json:"token" validate:"required"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Likes     int64     `json:"likes"`
	Liked     bool      `json:"liked"`
}

type Handler struct {
	feed   FeedQueries
	ingest Ingester
	likes  Liker
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

func NewHandler(feed FeedQueries, ingest Ingester, likes Liker, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		feed:   feed,
		ingest: ingest,
		likes:  likes,
		errors: commonhttp.NewErrorHandler(log),
		log:    log,
	}

	withTimeout := commonhttp.WithTimeout(timeout)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", withTimeout(h.listAll))
	mux.HandleFunc("GET /posts/page/{page}", withTimeout(h.listPage))
	mux.HandleFunc("GET /posts/user/{userId}", withTimeout(h.listByAuthor))
	mux.HandleFunc("GET /posts/{postId}", withTimeout(h.getByID))
	mux.HandleFunc("POST /posts/upload", withTimeout(h.upload))
	mux.HandleFunc("POST /posts/{postId}/like", withTimeout(h.like))
	mux.HandleFunc("DELETE /posts/{postId}/like", withTimeout(h.unlike))
	return mux
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	views, err := h.feed.ListAll(r.Context(), viewer)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toResponses(views))
}

func (h *Handler) listPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		h.writePathError(w, r, "page", err)
		return
	}
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	views, err := h.feed.ListPage(r.Context(), page, viewer)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toResponses(views))
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	postID, err := commonhttp.PathInt64(r, "postId")
	if err != nil {
		h.writePathError(w, r, "postId", err)
		return
	}
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	view, err := h.feed.GetByID(r.Context(), postID, viewer)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toResponse(view))
}

func (h *Handler) listByAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := commonhttp.PathInt64(r, "userId")
	if err != nil {
		h.writePathError(w, r, "userId", err)
		return
	}
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}

	views, err := h.feed.ListByAuthor(r.Context(), userdomain.ID(userID), viewer)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toResponses(views))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "upload_invalid_json",
		}).Warnf("upload failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}
	if req.Token == "" {
		req.Token = jwtverify.BearerToken(r)
	}
	if !h.validate(w, r, req) {
		return
	}

	view, err := h.ingest.Ingest(r.Context(), domain.Submission{
		AuthorUsername: req.Username,
		Content:        req.Content,
		Token:          req.Token,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toResponse(view))
}

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.likes.Like)
}

func (h *Handler) unlike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.likes.Unlike)
}

func (h *Handler) changeLike(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, postID int64, username, token string) (domain.EnrichedView, error),
) {
	postID, err := commonhttp.PathInt64(r, "postId")
	if err != nil {
		h.writePathError(w, r, "postId", err)
		return
	}

	var req likeRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}
	if req.Token == "" {
		req.Token = jwtverify.BearerToken(r)
	}
	if !h.validate(w, r, req) {
		return
	}

	view, err := apply(r.Context(), postID, req.Username, req.Token)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toResponse(view))
}

// viewer reads the optional ?viewer=<userId> parameter.
func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (*userdomain.ID, bool) {
	raw := r.URL.Query().Get("viewer")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeValidationFailed, "invalid viewer", map[string]any{"viewer": raw}, commonhttp.TraceIDFromContext(r.Context()))
		return nil, false
	}
	viewer := userdomain.ID(id)
	return &viewer, true
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, v any) bool {
	details, ok := commonhttp.ValidateStruct(v)
	if ok {
		return true
	}
	commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeValidationFailed, "validation failed", details, commonhttp.TraceIDFromContext(r.Context()))
	return false
}

func (h *Handler) writePathError(w http.ResponseWriter, r *http.Request, name string, err error) {
	h.log.WithFields(r.Context(), logger.Fields{
		"param":  name,
		"action": "invalid_path_param",
	}).Debugf("invalid path parameter: %v", err)
	commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid "+name, nil, commonhttp.TraceIDFromContext(r.Context()))
}

func toResponse(v domain.EnrichedView) postResponse {
	return postResponse{
		ID:        v.ID,
		Content:   v.Content,
		Timestamp: v.CreatedAt,
		Username:  v.Author,
		Likes:     v.LikeCount,
		Liked:     v.Liked,
	}
}

func toResponses(views []domain.EnrichedView) []postResponse {
	out := make([]postResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toResponse(v))
	}
	return out
}
