package publish

// Author identifies who a published commit is attributed to.
type Author struct {
	// Name is the display name used in the commit signature.
	Name string

	// Email is the address used in the commit signature.
	Email string

	// Login is an account identifier used when Name is not set.
	Login string
}

// SignatureName returns the name recorded in the commit signature.
// It falls back to the login when no display name is available.
func (a Author) SignatureName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Login
}

// Credentials authenticate the push against the remote HTTP(S)
// transport. Password may be a plain password, an auth token, or a
// personal access token.
type Credentials struct {
	Username string
	Password string
}

// Request describes one publish operation.
type Request struct {
	// RemoteURL is the HTTP(S) url of the remote repository.
	RemoteURL string

	// RepoName is used as a naming hint for the working directory.
	RepoName string

	// Author is the commit author identity.
	Author Author

	// Message is the commit message.
	Message string

	// Files maps repository-relative paths to raw content. Paths must
	// resolve inside the working directory.
	Files map[string][]byte

	// Credentials are passed through to the push transport.
	Credentials Credentials
}

// Result reports the outcome of a successful publish.
type Result struct {
	// CommitID is the hash of the commit that was pushed.
	CommitID string

	// PushOutput holds any sideband messages the remote sent during
	// the push. Informational only.
	PushOutput string
}
