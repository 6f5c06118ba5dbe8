package github

// CompareResponse is the relevant slice of the commit comparison endpoint's
// reply. Only the changed file list is consumed.
type CompareResponse struct {
	Files []CompareFile `json:"files"`
}

// CompareFile is one changed file from a commit comparison.
type CompareFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Patch    string `json:"patch"`
}

// ContentsResponse is the reply of the repository contents endpoint.
// Content is base64 with embedded newlines when Encoding is "base64".
type ContentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// CommitCommentRequest creates a comment on a specific line of a commit.
type CommitCommentRequest struct {
	Body string `json:"body"`
	Path string `json:"path"`
	Line int    `json:"line"`
}

// IssueCommentRequest creates a plain comment on a pull request.
type IssueCommentRequest struct {
	Body string `json:"body"`
}

// PullComment is one review comment on a pull request.
type PullComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

// ErrorResponse is GitHub's standard error body.
type ErrorResponse struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
