package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría.
// Si code viene vacío se deriva del nombre (slug sin tildes).
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Code        string `json:"code" validate:"omitempty,min=1,max=100"`
	Description string `json:"description"`
}

// UpdateCategoryRequest patch de una categoría.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
