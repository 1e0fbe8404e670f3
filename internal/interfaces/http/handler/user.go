package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/user"
)

// UserHandler lists the user directory for owner pickers
type UserHandler struct {
	BaseHandler
	users user.Repository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users user.Repository) *UserHandler {
	return &UserHandler{users: users}
}

// UserResponse is the API view of a directory user
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     user.Role `json:"role"`
	IsActive bool      `json:"is_active"`
}

type userListQuery struct {
	Role string `form:"role"`
	// all=true includes deactivated users
	All bool `form:"all"`
}

// List godoc
// @Summary      List directory users
// @Tags         users
// @Produce      json
// @Param        role query string false "CSM, AM or ADMIN"
// @Param        all  query bool   false "Include inactive users"
// @Success      200 {object} dto.Response
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q userListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	role := user.Role(q.Role)
	if role != "" && !role.IsValid() {
		h.HandleError(c, shared.NewValidationError("role", "invalid role '"+q.Role+"'"))
		return
	}

	users, err := h.users.FindAll(c.Request.Context(), role, !q.All)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = UserResponse{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
			IsActive: u.IsActive,
		}
	}
	h.Success(c, out)
}
