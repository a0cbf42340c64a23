package httpclient

// Request is one call made with Client.Do.
type Request struct {
	Method string
	// Path is joined to Config.BaseURL unless it is already absolute.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body is a *MultipartBody, an io.Reader, []byte or string. Anything
	// else is sent as JSON.
	Body any
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}
