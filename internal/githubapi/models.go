package githubapi

// Repository is the subset of repository metadata the service reads.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
}

// BranchRef is one entry from the branch-listing endpoint.
type BranchRef struct {
	Name      string `json:"name"`
	Commit    Commit `json:"commit"`
	Protected bool   `json:"protected"`
}

// Commit is the tip commit reference carried by a BranchRef.
type Commit struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// Compare is the three-field comparison result returned by the
// two-ref compare endpoint.
type Compare struct {
	AheadBy  int    `json:"ahead_by"`
	BehindBy int    `json:"behind_by"`
	Status   string `json:"status"`
}

// PullRequestInput is the request body for opening a pull request.
type PullRequestInput struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body,omitempty"`
}

// PullRequest is the subset of the created PR the service returns to
// its own callers.
type PullRequest struct {
	Number  int    `json:"number"`
	State   string `json:"state"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}
