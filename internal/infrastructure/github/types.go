package github

type prResponse struct {
	Title          string `json:"title"`
	Draft          bool   `json:"draft"`
	Merged         bool   `json:"merged"`
	Mergeable      *bool  `json:"mergeable"`
	MergeableState string `json:"mergeable_state"`
}

type reviewResponse struct {
	State string `json:"state"`
	User  *struct {
		Login string `json:"login"`
	} `json:"user"`
}
