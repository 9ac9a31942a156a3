package request

import (
	"fmt"
	"net/http"
)

// Method is the HTTP method of the request.
type Method int

const (
	MethodGet Method = iota
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return http.MethodGet
	case MethodPost:
		return http.MethodPost
	default:
		panic(fmt.Errorf(`unexpected request method "%d"`, int(m)))
	}
}
