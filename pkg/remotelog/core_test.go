package remotelog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCore_ForwardsNamedLoggerEntries(t *testing.T) {
	received := make(chan Entry, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err == nil {
			received <- e
		}
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, WorkerCount: 1}, zap.NewNop())
	require.NoError(t, s.Start())

	log := zap.New(NewCore(s, "backend", zapcore.InfoLevel))
	log.Debug("filtered out")
	log.Named("Handler").With(zap.String("shortcode", "abc")).Warn("not found", zap.Int("status", 404))
	log.Info("plain")

	require.NoError(t, s.Stop())
	close(received)

	var got []Entry
	for e := range received {
		got = append(got, e)
	}
	require.Len(t, got, 2)

	byLevel := map[string]Entry{}
	for _, e := range got {
		byLevel[e.Level] = e
	}

	warn := byLevel["warn"]
	assert.Equal(t, "backend", warn.Stack)
	assert.Equal(t, "handler", warn.Package)
	assert.Equal(t, `not found {"shortcode":"abc","status":404}`, warn.Message)

	info := byLevel["info"]
	assert.Equal(t, defaultPackage, info.Package)
	assert.Equal(t, "plain", info.Message)
}

func TestRenderMessage(t *testing.T) {
	assert.Equal(t, "hello", renderMessage("hello"))
	assert.Equal(t, `hello {"a":"b"}`, renderMessage("hello", []zapcore.Field{zap.String("a", "b")}))
}
