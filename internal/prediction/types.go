package prediction

// validationEntry is one element of a FastAPI 422 "detail" list.
type validationEntry struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// pingResponse is the body of GET {base}/.
type pingResponse struct {
	Message string `json:"message"`
}
