package parseclient_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docingest/internal/parseclient"
	"docingest/internal/port"
)

func portSubmitOpts() port.SubmitOptions {
	return port.SubmitOptions{Backend: "pipeline", Lang: "en", Method: "auto"}
}

func TestClient_SubmitReturnsTaskID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks/submit", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "pipeline", r.FormValue("backend"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"taskId":"task-123"}`))
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	taskID, err := c.Submit(context.Background(), []byte("%PDF-1.4 ..."), "doc.pdf", portSubmitOpts())
	require.NoError(t, err)
	assert.Equal(t, "task-123", taskID)
}

func TestClient_SubmitNon2xxIsRetryableOn5xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	_, err := c.Submit(context.Background(), []byte("x"), "doc.pdf", portSubmitOpts())
	require.Error(t, err)
	var se *parseclient.SubmitError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Retryable())
}

func TestClient_SubmitNon2xxIsRetryableOn408And429(t *testing.T) {
	for _, status := range []int{http.StatusRequestTimeout, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := parseclient.New(parseclient.Config{BaseURL: server.URL})
		_, err := c.Submit(context.Background(), []byte("x"), "doc.pdf", portSubmitOpts())
		require.Error(t, err)
		var se *parseclient.SubmitError
		require.ErrorAs(t, err, &se)
		assert.Truef(t, se.Retryable(), "status %d should be retryable", status)

		server.Close()
	}
}

func TestClient_SubmitNon2xxIsNotRetryableOnOther4xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	_, err := c.Submit(context.Background(), []byte("x"), "doc.pdf", portSubmitOpts())
	require.Error(t, err)
	var se *parseclient.SubmitError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Retryable())
}

func TestClient_WaitForCompletion_Completed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"completed"}`))
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	err := c.WaitForCompletion(context.Background(), "task-1", 5*time.Millisecond, time.Second)
	assert.NoError(t, err)
}

func TestClient_WaitForCompletion_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failed","errorMessage":"bad pdf section"}`))
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	err := c.WaitForCompletion(context.Background(), "task-1", 5*time.Millisecond, time.Second)
	require.Error(t, err)
	var te *parseclient.TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "bad pdf section", te.Message)
}

func TestClient_WaitForCompletion_TimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	err := c.WaitForCompletion(context.Background(), "task-1", 5*time.Millisecond, 20*time.Millisecond)
	require.Error(t, err)
	var te *parseclient.TimeoutError
	require.ErrorAs(t, err, &te)
}

func TestClient_FetchData_DecodesImagesAndBlocks(t *testing.T) {
	imgB64 := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "include_fields=md,content_list,middle_json,images")
		_, _ = w.Write([]byte(`{
			"md": {"content": "# Title"},
			"content_list": [{"type":"text","text":"hello"}],
			"middle_json": {"pdf_info": [{"page_idx":0,"page_size_w":100,"page_size_h":200,"preproc_blocks":[{"type":"text","bbox":[0,0,10,10]}]}]},
			"images": {"fig1.png": "` + imgB64 + `"}
		}`))
	}))
	defer server.Close()

	c := parseclient.New(parseclient.Config{BaseURL: server.URL})
	data, err := c.FetchData(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, "# Title", data.Markdown)
	require.Len(t, data.Pages, 1)
	assert.Equal(t, 0, data.Pages[0].PageIndex)
	require.Len(t, data.ContentList, 1)
	assert.Equal(t, "hello", data.ContentList[0].Text)
	assert.Equal(t, []byte("fake-png-bytes"), data.Images["fig1.png"])
}
