package api

import (
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"instavibe/types"
	"instavibe/version"

	"github.com/google/uuid"
)

const dialTimeout = 10 * time.Second
const fastReqTimeout = 30 * time.Second

// uploads can sit behind a cold start for a while
const uploadReqTimeout = 2 * time.Minute

const requestIdHeader = "X-Request-Id"

type Api struct {
	host         string
	fastClient   *http.Client
	uploadClient *http.Client
}

// Client is set by the cmd layer once config has resolved the api host.
var Client types.ApiClient

func Init(host string) {
	Client = New(host)
}

func New(host string) *Api {
	return &Api{
		host:         strings.TrimRight(host, "/"),
		fastClient:   newClient(fastReqTimeout),
		uploadClient: newClient(uploadReqTimeout),
	}
}

func (a *Api) Host() string {
	return a.host
}

type taggedTransport struct {
	underlyingTransport http.RoundTripper
}

// RoundTrip tags each request with a request id and user agent so server logs can be matched to ours
func (t *taggedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get(requestIdHeader) == "" {
		req.Header.Set(requestIdHeader, uuid.NewString())
	}
	req.Header.Set("User-Agent", "instavibe-cli/"+version.Version)

	start := time.Now()
	resp, err := t.underlyingTransport.RoundTrip(req)
	if err != nil {
		log.Printf("[api] %s %s id=%s failed after %s: %v", req.Method, req.URL.Path, req.Header.Get(requestIdHeader), time.Since(start), err)
		return nil, err
	}
	log.Printf("[api] %s %s id=%s -> %d in %s", req.Method, req.URL.Path, req.Header.Get(requestIdHeader), resp.StatusCode, time.Since(start))
	return resp, nil
}

var netDialer = &net.Dialer{
	Timeout: dialTimeout,
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &taggedTransport{
			underlyingTransport: &http.Transport{
				DialContext: netDialer.DialContext,
			},
		},
		Timeout: timeout,
	}
}
