package wecom

import (
	"context"
	"errors"
	"strings"
)

// mockHTTPClient implements HTTPClient for testing. It records every
// request and answers by URL path.
type mockHTTPClient struct {
	requests []*HTTPRequest
	tokenFn  func(req *HTTPRequest) (*HTTPResponse, error)
	sendFn   func(req *HTTPRequest) (*HTTPResponse, error)
}

func (m *mockHTTPClient) Do(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	m.requests = append(m.requests, req)
	switch {
	case strings.Contains(req.URL, tokenPath):
		if m.tokenFn != nil {
			return m.tokenFn(req)
		}
		return jsonResponse(`{"errcode":0,"errmsg":"ok","access_token":"tok-123","expires_in":7200}`), nil
	case strings.Contains(req.URL, sendPath):
		if m.sendFn != nil {
			return m.sendFn(req)
		}
		return jsonResponse(`{"errcode":0,"errmsg":"ok"}`), nil
	}
	return nil, errors.New("unexpected url " + req.URL)
}

func (m *mockHTTPClient) callsTo(path string) int {
	n := 0
	for _, r := range m.requests {
		if strings.Contains(r.URL, path) {
			n++
		}
	}
	return n
}

func jsonResponse(body string) *HTTPResponse {
	return &HTTPResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}
