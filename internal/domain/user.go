package domain

// Viewer is the operator of the current session as the server described it.
type Viewer struct {
	Username        string `json:"username"`
	Supervisor      bool   `json:"supervisor"`
	CategoryManager bool   `json:"category_manager"`
}

// Owns reports whether a row created by username belongs to the viewer.
func (v Viewer) Owns(username string) bool {
	return v.Username != "" && v.Username == username
}

// CanManageCategories mirrors the server rule for the category endpoints.
func (v Viewer) CanManageCategories() bool {
	return v.Supervisor || v.CategoryManager
}
