// Package fakebackend is an in-process stand-in for the photo backend, used by tests.
package fakebackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"instavibe/shared"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20

type Upload struct {
	Username    string
	Caption     string
	FileName    string
	ContentType string
	FileData    []byte
	Multipart   bool
}

type Backend struct {
	mu     sync.Mutex
	server *httptest.Server

	posts    []*shared.Post
	images   map[string][]byte
	uploads  []Upload
	requests map[string]int

	// failure injection, zero values mean normal behavior
	UploadStatus  int
	UploadError   string
	UploadRefused bool
	ListStatus    int
	ListBody      string
	ListDelay     time.Duration
	DeleteStatus  int

	// UploadHold, when set, keeps /upload from answering until it is closed
	UploadHold chan struct{}

	// NaiveTimes writes upload_time the way python's isoformat() does: no zone, microseconds
	NaiveTimes bool
}

const naiveTimeLayout = "2006-01-02T15:04:05.000000"

func New() *Backend {
	b := &Backend{
		images:   make(map[string][]byte),
		requests: make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/upload", b.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/files", b.handleList).Methods(http.MethodGet)
	r.HandleFunc("/files/{id}", b.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/images/{name}", b.handleImage).Methods(http.MethodGet)

	b.server = httptest.NewServer(r)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Close() {
	b.server.Close()
}

// Configure runs fn with the backend locked, for changing failure injection mid-test.
func (b *Backend) Configure(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// Seed adds posts, newest first, as the server would list them.
func (b *Backend) Seed(posts ...*shared.Post) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = append(b.posts, posts...)
}

func (b *Backend) AddImage(name string, data []byte) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images[name] = data
	return b.server.URL + "/images/" + name
}

func (b *Backend) Posts() []*shared.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*shared.Post(nil), b.posts...)
}

func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Count reports how many requests hit a route, e.g. Count("POST /upload").
func (b *Backend) Count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[route]
}

func (b *Backend) record(r *http.Request) {
	route := r.Method + " " + r.URL.Path
	if tpl, err := mux.CurrentRoute(r).GetPathTemplate(); err == nil {
		route = r.Method + " " + tpl
	}
	b.mu.Lock()
	b.requests[route]++
	b.mu.Unlock()
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	b.record(r)

	b.mu.Lock()
	status, errMsg, refused, hold := b.UploadStatus, b.UploadError, b.UploadRefused, b.UploadHold
	b.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		writeJSON(w, status, map[string]interface{}{"success": false, "error": errMsg})
		return
	}

	var upload Upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Failed to parse form data: " + err.Error()})
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "No file uploaded"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		upload = Upload{
			Username:    r.FormValue("username"),
			Caption:     r.FormValue("caption"),
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			FileData:    data,
			Multipart:   true,
		}
	} else {
		var body struct {
			Username string `json:"username"`
			Caption  string `json:"caption"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid json"})
			return
		}
		upload = Upload{Username: body.Username, Caption: body.Caption}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, upload)

	if refused {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": errMsg})
		return
	}

	post := &shared.Post{
		Id:         uuid.NewString(),
		Username:   upload.Username,
		Caption:    upload.Caption,
		FileName:   upload.FileName,
		UploadedAt: shared.NewTimestamp(time.Now().UTC().Truncate(time.Second)),
	}
	if upload.Multipart {
		b.images[upload.FileName] = upload.FileData
		post.ImageUrl = b.server.URL + "/images/" + upload.FileName
	}
	b.posts = append([]*shared.Post{post}, b.posts...)

	if b.NaiveTimes {
		res := naivePost(post)
		res["success"] = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	writeJSON(w, http.StatusOK, shared.CreatePostResponse{Success: true, Post: *post})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	b.record(r)

	b.mu.Lock()
	status, body, delay, naive := b.ListStatus, b.ListBody, b.ListDelay, b.NaiveTimes
	posts := append([]*shared.Post{}, b.posts...)
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		writeJSON(w, status, map[string]interface{}{"error": http.StatusText(status)})
		return
	}

	if body != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
		return
	}

	if naive {
		res := make([]map[string]interface{}, 0, len(posts))
		for _, p := range posts {
			res = append(res, naivePost(p))
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func naivePost(p *shared.Post) map[string]interface{} {
	return map[string]interface{}{
		"_id":         p.Id,
		"username":    p.Username,
		"caption":     p.Caption,
		"file_url":    p.ImageUrl,
		"file_name":   p.FileName,
		"upload_time": p.UploadedAt.UTC().Format(naiveTimeLayout),
	}
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.DeleteStatus != 0 {
		writeJSON(w, b.DeleteStatus, map[string]interface{}{"error": http.StatusText(b.DeleteStatus)})
		return
	}

	for i, p := range b.posts {
		if p.Id == id {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
			writeJSON(w, http.StatusOK, shared.DeletePostResponse{Success: true, Message: "deleted"})
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "File not found"})
}

func (b *Backend) handleImage(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	name := mux.Vars(r)["name"]

	b.mu.Lock()
	data, ok := b.images[name]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
