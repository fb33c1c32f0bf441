package exporthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/goliatone/go-school-export/adapters/exportapi"
)

type httpRequest struct {
	r *http.Request
}

func (req httpRequest) Context() context.Context {
	if req.r == nil {
		return context.Background()
	}
	return req.r.Context()
}

func (req httpRequest) Method() string {
	if req.r == nil {
		return ""
	}
	return req.r.Method
}

func (req httpRequest) Path() string {
	if req.r == nil || req.r.URL == nil {
		return ""
	}
	return req.r.URL.Path
}

func (req httpRequest) Header(name string) string {
	if req.r == nil {
		return ""
	}
	return req.r.Header.Get(name)
}

func (req httpRequest) Query(name string) string {
	return req.QueryValues().Get(name)
}

func (req httpRequest) QueryValues() url.Values {
	if req.r == nil || req.r.URL == nil {
		return url.Values{}
	}
	return req.r.URL.Query()
}

type httpResponse struct {
	w http.ResponseWriter
}

func (res httpResponse) SetHeader(name, value string) {
	res.w.Header().Set(name, value)
}

func (res httpResponse) WriteHeader(status int) {
	res.w.WriteHeader(status)
}

func (res httpResponse) Write(data []byte) (int, error) {
	return res.w.Write(data)
}

func (res httpResponse) WriteJSON(status int, payload any) error {
	res.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	res.w.WriteHeader(status)
	return json.NewEncoder(res.w).Encode(payload)
}

var (
	_ exportapi.Request  = httpRequest{}
	_ exportapi.Response = httpResponse{}
)
