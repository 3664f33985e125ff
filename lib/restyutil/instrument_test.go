package restyutil

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.messages[id] = contents
}

func TestInstrumentClient(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/798", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/feed", http.StatusFound)
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "secret"})
		w.Write([]byte("<html>feed</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentClient(client, nil, output)

	res, err := client.R().SetContext(context.Background()).Get("/jobs/798")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/feed", finalURL(res))

	require.Len(t, output.messages, 1)
	dump := output.messages["1"]
	require.Contains(t, dump, "GET "+server.URL+"/jobs/798")
	require.Contains(t, dump, "200 "+server.URL+"/feed")
	require.Contains(t, dump, "<html>feed</html>")
	require.False(t, strings.Contains(dump, "secret"), "cookies must be redacted")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("1", "hello")
	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))
}
