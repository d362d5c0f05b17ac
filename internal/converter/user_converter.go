package converter

import (
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// The role name falls back to the role id when Role is not preloaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	role := user.Role.RoleName
	if role == "" {
		role = user.RoleName()
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      role,
		IsActive:  user.Active(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// optionalUser converts a preloaded relation, skipping the zero value gorm
// leaves when the relation was not loaded.
func optionalUser(user *entity.User) *dto.UserResponse {
	if user == nil || user.Email == "" {
		return nil
	}
	return UserToResponse(user)
}
