package exercises

// Exercise is a catalog entry. CreatedBy nil marks a global exercise,
// visible to every user and mutable by none.
type Exercise struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	MuscleGroup string  `json:"muscle_group"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	CreatedBy   *int    `json:"created_by,omitempty"`
}

func (e Exercise) IsGlobal() bool {
	return e.CreatedBy == nil
}
