package request

import (
	"fmt"
	"net/http"
)

// HTTPError is returned when the response status code is 400 or greater.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
}

func newHTTPError(req *http.Request, res *http.Response) HTTPError {
	return HTTPError{Method: req.Method, URL: req.URL.String(), StatusCode: res.StatusCode}
}

func (e HTTPError) Error() string {
	return fmt.Sprintf(`request %s "%s" failed: %d %s`, e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
