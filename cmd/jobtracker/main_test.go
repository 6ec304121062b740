package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree in-process and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const jobPage = `<html><head>
<script type="application/ld+json">{"@type": "JobPosting", "title": "Backend Developer",
 "hiringOrganization": {"@type": "Organization", "name": "Initech"},
 "jobLocation": {"@type": "Place", "address": {"addressLocality": "Austin"}},
 "description": "<p>Write APIs.</p>"}</script>
</head><body><h1>Backend Developer</h1></body></html>`

func newJobSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /job", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(jobPage))
	})
	mux.HandleFunc("GET /blank", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Nothing here</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type scrapedJob struct {
	URL     string         `json:"url"`
	Found   bool           `json:"found"`
	Source  string         `json:"source"`
	Job     map[string]any `json:"job"`
	SavedID string         `json:"saved_id"`
	Error   string         `json:"error"`
}

func decodeJobs(t *testing.T, out string) []scrapedJob {
	t.Helper()
	var results []scrapedJob
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	return results
}

func TestScrapeJob(t *testing.T) {
	site := newJobSite(t)

	out, _, err := execute(t, "", "scrape", "job", "--browser", "never", "--validate",
		"-u", site.URL+"/job", "-u", site.URL+"/blank")
	require.NoError(t, err)

	results := decodeJobs(t, out)
	require.Len(t, results, 2)

	assert.Equal(t, site.URL+"/job", results[0].URL)
	assert.True(t, results[0].Found)
	assert.Equal(t, "structured", results[0].Source)
	assert.Equal(t, "Backend Developer", results[0].Job["job_title"])
	assert.Equal(t, "Initech", results[0].Job["company"])
	assert.Equal(t, "Austin", results[0].Job["location"])
	assert.Equal(t, "interested", results[0].Job["status"])
	assert.Empty(t, results[0].Error)

	assert.False(t, results[1].Found)
	assert.Nil(t, results[1].Job)
	assert.Empty(t, results[1].Error)
}

func TestScrapeJob_FetchFailure(t *testing.T) {
	site := newJobSite(t)

	out, _, err := execute(t, "", "scrape", "job", "--browser", "never",
		"-u", site.URL+"/job", "-u", site.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 URLs failed")

	results := decodeJobs(t, out)
	require.Len(t, results, 2)
	assert.True(t, results[0].Found)
	assert.Contains(t, results[1].Error, "HTTP status 404")
}

func TestScrapeJob_Save(t *testing.T) {
	site := newJobSite(t)

	var calls atomic.Int32
	jobID := uuid.New()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/extension/jobs", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Backend Developer", body["job_title"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"job":     map[string]any{"id": jobID, "job_title": "Backend Developer", "company": "Initech", "status": "interested"},
		})
	}))
	defer api.Close()

	out, _, err := execute(t, "", "scrape", "job", "--browser", "never", "--save",
		"--server", api.URL, "--token", "secret-token", "-u", site.URL+"/job")
	require.NoError(t, err)

	results := decodeJobs(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, jobID.String(), results[0].SavedID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScrapeJob_FlagErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no urls", args: []string{"scrape", "job"}, wantErr: "at least one --url"},
		{name: "bad browser mode", args: []string{"scrape", "job", "-u", "https://example.com", "--browser", "sometimes"}, wantErr: "--browser must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScrapeProfile_RejectsNonProfileURL(t *testing.T) {
	_, _, err := execute(t, "", "scrape", "profile", "-u", "https://www.linkedin.com/jobs/view/1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LinkedIn profile URL")
}

func TestMatch(t *testing.T) {
	out, _, err := execute(t, "", "match", "Dr. Jane Smith, PhD", "jane  smith")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "jane smith", got["normalized_b"])
	assert.Equal(t, false, got["match"])

	out, _, err = execute(t, "", "match", "Robert J. Lee", "robert lee")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, true, got["match"])
}

func TestMerge(t *testing.T) {
	out, _, err := execute(t, "", "merge",
		"--existing", "Bob Lee, PhD",
		"--incoming", "bob lee", "--incoming", "Raj Patel", "--incoming", "raj patel")
	require.NoError(t, err)

	var got struct {
		Merged         []string `json:"merged"`
		Added          []string `json:"added"`
		AlreadyExisted []string `json:"already_existed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Bob Lee, PhD", "Raj Patel"}, got.Merged)
	assert.Equal(t, []string{"Raj Patel"}, got.Added)
	assert.Equal(t, []string{"bob lee", "raj patel"}, got.AlreadyExisted)

	_, stderr, err := execute(t, "", "-v", "merge", "--incoming", "Raj Patel")
	require.NoError(t, err)
	assert.Contains(t, stderr, "CONNECTION MERGE")

	_, _, err = execute(t, "", "merge", "--existing", "Bob Lee")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userID := uuid.New()

	out, _, err := execute(t, "", "token", "--user-id", userID.String())
	require.NoError(t, err)

	jwtConfig, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtConfig).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
}

func TestToken_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DEFAULT_USER_ID", "")

	_, _, err := execute(t, "", "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_USER_ID is required")

	_, _, err = execute(t, "", "token", "--user-id", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid user id")
}

func TestHashKey(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("API_KEY_PEPPER", "")

	out, _, err := execute(t, "ext-key-123\n", "hash-key")
	require.NoError(t, err)

	hasher, err := config.NewKeyHashConfig()
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.True(t, hasher.VerifyKey("ext-key-123", hash))
	assert.False(t, hasher.VerifyKey("other", hash))

	_, _, err = execute(t, "", "hash-key")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"job_title": "SRE", "company": "Hooli", "location": null,
"salary": null, "job_url": "https://example.com/jobs/1", "job_description": null, "status": "interested", "notes": null}`), 0o644))
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"job_title": null, "status": "maybe"}`), 0o644))

	out, _, err := execute(t, "", "validate", "--json", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed")

	_, stderr, err := execute(t, "", "validate", "--json", invalid)
	require.Error(t, err)
	assert.Contains(t, stderr, "Validation failed")

	_, _, err = execute(t, "", "validate", "--json", filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON file not found")

	_, _, err = execute(t, "", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
