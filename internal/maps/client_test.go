package maps

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/username/traffic-heatmap-planner/internal/heatmap"
	"go.uber.org/zap"
)

var departure = time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)

func testQuery() heatmap.Query {
	return heatmap.Query{
		Origin:       "San Francisco, CA",
		Destination:  "San Jose, CA",
		Departure:    departure,
		Mode:         "driving",
		TrafficModel: "best_guess",
	}
}

type mockClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (mc *mockClient) Do(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("error request is nil")
	}
	return mc.DoFunc(req)
}

func newTestClient(t *testing.T, doFunc func(req *http.Request) (*http.Response, error)) *Client {
	logger, _ := zap.NewDevelopment()
	c := NewClient("", "test-key", 0, logger)
	c.httpClient = &mockClient{DoFunc: doFunc}
	return c
}

func jsonFileResponse(t *testing.T, status int, filePath string) func(req *http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		data, err := os.Open(filePath)
		if err != nil {
			t.Fatal(err)
		}
		return &http.Response{StatusCode: status, Body: data}, nil
	}
}

func TestClient_TravelTime(t *testing.T) {
	tests := []struct {
		name    string
		doFunc  func(t *testing.T) func(req *http.Request) (*http.Response, error)
		want    time.Duration
		wantErr bool
	}{
		{
			name: "duration in traffic preferred",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return jsonFileResponse(t, http.StatusOK, "testdata/distancematrix-in-traffic.json")
			},
			want: 4020 * time.Second,
		},
		{
			name: "plain duration without traffic",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return jsonFileResponse(t, http.StatusOK, "testdata/distancematrix-no-traffic.json")
			},
			want: 5520 * time.Second,
		},
		{
			name: "element not found",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return jsonFileResponse(t, http.StatusOK, "testdata/distancematrix-not-found.json")
			},
			wantErr: true,
		},
		{
			name: "request denied has no rows",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return jsonFileResponse(t, http.StatusOK, "testdata/distancematrix-denied.json")
			},
			wantErr: true,
		},
		{
			name: "non 200 response status",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: http.StatusInternalServerError,
						Body:       io.NopCloser(strings.NewReader("")),
					}, nil
				}
			},
			wantErr: true,
		},
		{
			name: "malformed body",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: http.StatusOK,
						Body:       io.NopCloser(strings.NewReader("{not json")),
					}, nil
				}
			},
			wantErr: true,
		},
		{
			name: "transport error",
			doFunc: func(t *testing.T) func(req *http.Request) (*http.Response, error) {
				return func(req *http.Request) (*http.Response, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			doFunc := tt.doFunc(t)
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				calls++
				return doFunc(req)
			})

			got, err := client.TravelTime(context.Background(), testQuery())

			if (err != nil) != tt.wantErr {
				t.Fatalf("Client.TravelTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrQueryFailed) {
				t.Errorf("Client.TravelTime() error = %v, want ErrQueryFailed", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Client.TravelTime() = %v, want %v", got, tt.want)
			}
			if calls != 1 {
				t.Errorf("HTTP calls = %d, want exactly 1 (no retries)", calls)
			}
		})
	}
}

func TestClient_TravelTime_RequestParameters(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		data, err := os.ReadFile("testdata/distancematrix-in-traffic.json")
		if err != nil {
			t.Error(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 0, zap.NewNop())
	if _, err := client.TravelTime(context.Background(), testQuery()); err != nil {
		t.Fatalf("Client.TravelTime() error = %v", err)
	}

	if got.URL.Path != "/distancematrix/json" {
		t.Errorf("path = %q, want /distancematrix/json", got.URL.Path)
	}

	want := map[string]string{
		"origins":        "San Francisco, CA",
		"destinations":   "San Jose, CA",
		"mode":           "driving",
		"traffic_model":  "best_guess",
		"departure_time": "1737360000",
		"key":            "secret",
	}
	query := got.URL.Query()
	for k, v := range want {
		if query.Get(k) != v {
			t.Errorf("query[%s] = %q, want %q", k, query.Get(k), v)
		}
	}
}

func TestClient_TravelTime_HidesKeyInErrors(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "super-secret", 0, zap.NewNop())

	_, err := client.TravelTime(context.Background(), testQuery())
	if err == nil {
		t.Fatal("Client.TravelTime() error = nil, want connection error")
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Errorf("error leaks the API key: %v", err)
	}
}

func TestClient_TravelTime_HidesKeyInRequestErrors(t *testing.T) {
	// A control character makes the URL unparseable before any request is sent
	client := NewClient("http://maps.example.com/api\x7f", "super-secret", 0, zap.NewNop())
	client.httpClient = &mockClient{DoFunc: func(req *http.Request) (*http.Response, error) {
		t.Error("Do() called for an invalid URL")
		return nil, errors.New("unexpected call")
	}}

	_, err := client.TravelTime(context.Background(), testQuery())
	if err == nil {
		t.Fatal("Client.TravelTime() error = nil, want request error")
	}
	if !errors.Is(err, ErrQueryFailed) {
		t.Errorf("Client.TravelTime() error = %v, want ErrQueryFailed", err)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Errorf("error leaks the API key: %v", err)
	}
}

func TestClient_RateLimit(t *testing.T) {
	if NewClient("", "k", 0, zap.NewNop()).limiter != nil {
		t.Error("NewClient(maxQPS=0) set a limiter")
	}

	limited := NewClient("", "k", 1000, zap.NewNop())
	if limited.limiter == nil {
		t.Fatal("NewClient(maxQPS>0) did not set a limiter")
	}

	calls := 0
	limited.httpClient = &mockClient{DoFunc: func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonFileResponse(t, http.StatusOK, "testdata/distancematrix-in-traffic.json")(req)
	}}

	if _, err := limited.TravelTime(context.Background(), testQuery()); err != nil {
		t.Fatalf("TravelTime() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := limited.TravelTime(ctx, testQuery()); err == nil {
		t.Error("TravelTime() with cancelled context, error = nil")
	}
	if calls != 1 {
		t.Errorf("HTTP calls = %d, want 1", calls)
	}
}

func TestClient_Autocomplete(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		body      string
		file      string
		want      []string
		wantCalls int
	}{
		{
			name:      "too short",
			input:     "S",
			want:      []string{},
			wantCalls: 0,
		},
		{
			name:  "top five",
			input: "San Jose",
			file:  "testdata/autocomplete-ok.json",
			want: []string{
				"San Jose, CA, USA",
				"San Jose, Costa Rica",
				"San Jose del Cabo, BCS, Mexico",
				"San Jose Airport, CA, USA",
				"San Jose Street, San Francisco, CA, USA",
			},
			wantCalls: 1,
		},
		{
			name:      "zero results",
			input:     "zzzz",
			body:      `{"predictions": [], "status": "ZERO_RESULTS"}`,
			want:      []string{},
			wantCalls: 1,
		},
		{
			name:      "request denied",
			input:     "San",
			body:      `{"predictions": [], "status": "REQUEST_DENIED", "error_message": "not enabled"}`,
			want:      []string{},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				calls++
				if req.URL.Query().Get("types") != "geocode" {
					t.Errorf("types = %q, want geocode", req.URL.Query().Get("types"))
				}
				if tt.file != "" {
					return jsonFileResponse(t, http.StatusOK, tt.file)(req)
				}
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader(tt.body)),
				}, nil
			})

			got, err := client.Autocomplete(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Client.Autocomplete() error = %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("HTTP calls = %d, want %d", calls, tt.wantCalls)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Client.Autocomplete() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDirectionsURL(t *testing.T) {
	got := DirectionsURL("San Francisco, CA", "San Jose, CA", "driving")
	want := "https://www.google.com/maps/dir/?api=1&destination=San+Jose%2C+CA&origin=San+Francisco%2C+CA&travelmode=driving"
	if got != want {
		t.Errorf("DirectionsURL() = %q, want %q", got, want)
	}
}

func TestValidModes(t *testing.T) {
	if !ValidMode("transit") || ValidMode("flying") {
		t.Error("ValidMode() misclassified modes")
	}
	if !ValidTrafficModel("pessimistic") || ValidTrafficModel("worst") {
		t.Error("ValidTrafficModel() misclassified models")
	}
}
