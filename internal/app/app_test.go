package app

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"wikiextract/internal/config"
	"wikiextract/internal/logging"
	"wikiextract/internal/wiki"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// mockConfigLoader allows controlling config loading results.
type mockConfigLoader struct {
	mock.Mock
}

func (m *mockConfigLoader) Load(filename string) (*config.Config, error) {
	args := m.Called(filename)
	cfg, _ := args.Get(0).(*config.Config)
	return cfg, args.Error(1)
}

// recordingFetcher returns a canned body or error and keeps the requests it saw.
type recordingFetcher struct {
	body     []byte
	err      error
	requests []*http.Request
}

func (f *recordingFetcher) Fetch(req *http.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	return f.body, f.err
}

// mockFetcherFactory returns the configured fetcher.
type mockFetcherFactory struct {
	mock.Mock
}

func (m *mockFetcherFactory) New(cfg *config.Config) (wiki.Fetcher, error) {
	args := m.Called(cfg)
	f, _ := args.Get(0).(wiki.Fetcher)
	return f, args.Error(1)
}

func envOf(vars map[string]string) wiki.LookupEnvFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// quietLogging silences the standard logger and restores the level afterwards.
func quietLogging(t *testing.T) {
	t.Helper()
	originalLevel := logging.GetLevel()
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() {
		log.SetOutput(originalOutput)
		logging.SetLevel(originalLevel)
	})
}

type harness struct {
	runner  *AppRunner
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	fetcher *recordingFetcher
	factory *mockFetcherFactory
	loader  *mockConfigLoader
}

func newHarness(t *testing.T, fetcher *recordingFetcher, env map[string]string) *harness {
	t.Helper()
	quietLogging(t)
	h := &harness{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		fetcher: fetcher,
		factory: &mockFetcherFactory{},
		loader:  &mockConfigLoader{},
	}
	h.factory.On("New", mock.AnythingOfType("*config.Config")).Return(fetcher, nil).Maybe()
	h.runner = NewAppRunnerWithOpts(AppRunnerOpts{
		ConfigLoader:   h.loader,
		FetcherFactory: h.factory,
		Stdout:         h.stdout,
		Stderr:         h.stderr,
		LookupEnv:      envOf(env),
	})
	return h
}

func (h *harness) onlyRequest(t *testing.T) *http.Request {
	t.Helper()
	require.Len(t, h.fetcher.requests, 1, "exactly one request per invocation")
	return h.fetcher.requests[0]
}

const rustBody = `{"batchcomplete":"","query":{"pages":{"25432":{"pageid":25432,"ns":0,"title":"Rust (programming language)","extract":"Rust is a general-purpose programming language."}}}}`

// --- Tests ---

func TestRun_PrintsExtract(t *testing.T) {
	h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, nil)

	err := h.runner.Run([]string{"-l", "en", "Rust (programming language)"})
	require.NoError(t, err)

	assert.Equal(t, "Rust is a general-purpose programming language.\n", h.stdout.String())
	assert.Empty(t, h.stderr.String())

	req := h.onlyRequest(t)
	assert.Equal(t, "en.wikipedia.org", req.URL.Host)
	assert.Equal(t, "Rust (programming language)", req.URL.Query().Get("titles"))
	assert.Equal(t, "query", req.URL.Query().Get("action"))
	assert.Equal(t, "extracts", req.URL.Query().Get("prop"))
	assert.Equal(t, "wikiextract/"+Version, req.Header.Get("User-Agent"))
}

func TestRun_ExtractPassedThroughVerbatim(t *testing.T) {
	extract := "Zeile eins\n\n  Zeile zwei mit \"Anführungszeichen\" und \\Backslash\\ "
	body := `{"query":{"pages":{"7":{"extract":"Zeile eins\n\n  Zeile zwei mit \"Anführungszeichen\" und \\Backslash\\ "}}}}`
	h := newHarness(t, &recordingFetcher{body: []byte(body)}, nil)

	require.NoError(t, h.runner.Run([]string{"Zeile"}))
	assert.Equal(t, extract+"\n", h.stdout.String())
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name        string
		fetcher     *recordingFetcher
		wantErr     error
		wantMessage string
	}{
		{
			name:        "No pages",
			fetcher:     &recordingFetcher{body: []byte(`{"query":{"pages":{}}}`)},
			wantErr:     wiki.ErrNotFound,
			wantMessage: "Not found...\n",
		},
		{
			name:        "Malformed JSON",
			fetcher:     &recordingFetcher{body: []byte(`{"query":`)},
			wantErr:     wiki.ErrNotFound,
			wantMessage: "Not found...\n",
		},
		{
			name:        "Missing page",
			fetcher:     &recordingFetcher{body: []byte(`{"query":{"pages":{"-1":{"ns":0,"title":"Xyzzy","missing":""}}}}`)},
			wantErr:     wiki.ErrNotFound,
			wantMessage: "Not found...\n",
		},
		{
			name:        "Transport failure",
			fetcher:     &recordingFetcher{err: errors.New("dial tcp: lookup zz.wikipedia.org: no such host")},
			wantErr:     wiki.ErrLanguageNotFound,
			wantMessage: "That language does not exist.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.fetcher, nil)

			err := h.runner.Run([]string{"-l", "zz", "Xyzzy"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMessage, h.stderr.String())
			assert.Empty(t, h.stdout.String())
			h.onlyRequest(t)
		})
	}
}

func TestRun_LanguagePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		wantHost string
	}{
		{"Flag wins over LANG", []string{"-l", "de", "Berlin"}, map[string]string{"LANG": "fr_FR.UTF-8"}, "de.wikipedia.org"},
		{"Long flag", []string{"-lang", "ja", "Berlin"}, map[string]string{"LANG": "fr_FR.UTF-8"}, "ja.wikipedia.org"},
		{"LANG prefix", []string{"Berlin"}, map[string]string{"LANG": "fr_FR.UTF-8"}, "fr.wikipedia.org"},
		{"No LANG", []string{"Berlin"}, nil, "en.wikipedia.org"},
		{"Short LANG ignored", []string{"Berlin"}, map[string]string{"LANG": "C"}, "en.wikipedia.org"},
		{"Flag after phrase", []string{"Berlin", "-l", "it"}, nil, "it.wikipedia.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, tt.env)

			require.NoError(t, h.runner.Run(tt.args))
			req := h.onlyRequest(t)
			assert.Equal(t, tt.wantHost, req.URL.Host)
			assert.Equal(t, "Berlin", req.URL.Query().Get("titles"))
		})
	}
}

func TestRun_DoubleDashTerminatesFlags(t *testing.T) {
	h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, nil)

	require.NoError(t, h.runner.Run([]string{"-l", "en", "--", "-l"}))
	assert.Equal(t, "-l", h.onlyRequest(t).URL.Query().Get("titles"))
}

func TestRun_ExtraArgumentsIgnored(t *testing.T) {
	h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, nil)

	require.NoError(t, h.runner.Run([]string{"New", "York"}))
	assert.Equal(t, "New", h.onlyRequest(t).URL.Query().Get("titles"))
}

func TestRun_MissingPhrase(t *testing.T) {
	h := newHarness(t, &recordingFetcher{}, nil)

	err := h.runner.Run(nil)
	assert.ErrorIs(t, err, ErrMissingArgs)
	assert.Contains(t, h.stderr.String(), "Usage:")
	assert.Empty(t, h.stdout.String())
	h.factory.AssertNotCalled(t, "New", mock.Anything)
	assert.Empty(t, h.fetcher.requests)
}

func TestRun_HelpAndVersion(t *testing.T) {
	for _, arg := range []string{"-h", "-help", "--help"} {
		t.Run(arg, func(t *testing.T) {
			h := newHarness(t, &recordingFetcher{}, nil)
			require.NoError(t, h.runner.Run([]string{arg}))
			assert.Contains(t, h.stderr.String(), "wikiextract [options] <text>")
			h.factory.AssertNotCalled(t, "New", mock.Anything)
		})
	}

	t.Run("version", func(t *testing.T) {
		h := newHarness(t, &recordingFetcher{}, nil)
		require.NoError(t, h.runner.Run([]string{"-version"}))
		assert.Equal(t, "wikiextract "+Version+"\n", h.stdout.String())
		assert.Empty(t, h.fetcher.requests)
	})
}

func TestRun_UnknownFlag(t *testing.T) {
	h := newHarness(t, &recordingFetcher{}, nil)

	err := h.runner.Run([]string{"-x", "Berlin"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, h.stderr.String(), "flag provided but not defined: -x")
	assert.Contains(t, h.stderr.String(), "Usage:")
	assert.Empty(t, h.fetcher.requests)
}

func TestRun_InvalidLanguageCode(t *testing.T) {
	h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, nil)

	err := h.runner.Run([]string{"-l", "e n", "Berlin"})
	assert.ErrorIs(t, err, wiki.ErrInvalidEndpoint)
	assert.Contains(t, h.stderr.String(), "invalid endpoint")
	assert.Empty(t, h.stdout.String())
	assert.Empty(t, h.fetcher.requests, "no request for an invalid endpoint")
}

func TestRun_ConfigFile(t *testing.T) {
	h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, nil)
	cfg := config.Default()
	cfg.DefaultLanguage = "nl"
	cfg.UserAgent = "custom-agent/2.0"
	cfg.Logging.Level = "debug"
	h.loader.On("Load", "wiki.yaml").Return(cfg, nil).Once()

	require.NoError(t, h.runner.Run([]string{"-config", "wiki.yaml", "Amsterdam"}))
	h.loader.AssertExpectations(t)

	req := h.onlyRequest(t)
	assert.Equal(t, "nl.wikipedia.org", req.URL.Host)
	assert.Equal(t, "custom-agent/2.0", req.Header.Get("User-Agent"))
	assert.Equal(t, logging.Debug, logging.GetLevel(), "config level applies without -loglevel")
}

func TestRun_LogLevelFlagOverridesConfig(t *testing.T) {
	h := newHarness(t, &recordingFetcher{body: []byte(rustBody)}, nil)
	cfg := config.Default()
	cfg.Logging.Level = "debug"
	h.loader.On("Load", "wiki.yaml").Return(cfg, nil).Once()

	require.NoError(t, h.runner.Run([]string{"-loglevel", "warn", "-config", "wiki.yaml", "Amsterdam"}))
	assert.Equal(t, logging.Warning, logging.GetLevel())
}

func TestRun_ConfigLoadError(t *testing.T) {
	h := newHarness(t, &recordingFetcher{}, nil)
	h.loader.On("Load", "missing.yaml").Return(nil, errors.New("failed to read config file 'missing.yaml'")).Once()

	err := h.runner.Run([]string{"-config", "missing.yaml", "Berlin"})
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, h.stderr.String(), "missing.yaml")
	h.factory.AssertNotCalled(t, "New", mock.Anything)
}

func TestRun_FetcherFactoryError(t *testing.T) {
	quietLogging(t)
	factory := &mockFetcherFactory{}
	factory.On("New", mock.Anything).Return(nil, errors.New("bearer authentication requires 'token'")).Once()
	var stderr bytes.Buffer
	runner := NewAppRunnerWithOpts(AppRunnerOpts{
		FetcherFactory: factory,
		Stdout:         io.Discard,
		Stderr:         &stderr,
		LookupEnv:      envOf(nil),
	})

	err := runner.Run([]string{"Berlin"})
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, stderr.String(), "bearer authentication")
	factory.AssertExpectations(t)
}

// TestRun_DefaultFetcher goes through the real HTTP client and executor
// against a local server standing in for the wiki.
func TestRun_DefaultFetcher(t *testing.T) {
	quietLogging(t)
	var gotPath, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.URL.Query().Get("titles")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, rustBody)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Endpoint = server.URL + "/{{.Lang}}/w/api.php"
	loader := &mockConfigLoader{}
	loader.On("Load", "local.yaml").Return(cfg, nil)

	var stdout, stderr bytes.Buffer
	runner := NewAppRunnerWithOpts(AppRunnerOpts{
		ConfigLoader: loader,
		Stdout:       &stdout,
		Stderr:       &stderr,
		LookupEnv:    envOf(map[string]string{"LANG": "sv_SE.UTF-8"}),
	})

	require.NoError(t, runner.Run([]string{"-config", "local.yaml", "Rust (programming language)"}))
	assert.Equal(t, "/sv/w/api.php", gotPath)
	assert.Equal(t, "Rust (programming language)", gotTitle)
	assert.Equal(t, "Rust is a general-purpose programming language.\n", stdout.String())
	assert.Empty(t, stderr.String())
}
