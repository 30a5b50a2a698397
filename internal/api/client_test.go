package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroh/slidegen/internal/domain"
)

func TestGenerate(t *testing.T) {
	var got GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(GenerateResponse{
			PresentationID: "job-1",
			Topic:          got.SelectedTopic,
			SlideCount:     got.Preferences.SlideCount,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Generate(context.Background(), GenerateRequest{
		SelectedTopic: "Cloud Cost Optimization",
		UserID:        "user_abc",
		ClientID:      "client-1",
		Preferences:   domain.Preferences{SlideCount: 10, Industry: "tech"},
	})
	require.NoError(t, err)

	assert.Equal(t, "job-1", resp.PresentationID)
	assert.Equal(t, "Cloud Cost Optimization", got.SelectedTopic)
	assert.Equal(t, "user_abc", got.UserID)
	assert.Equal(t, "client-1", got.ClientID)
	assert.Equal(t, 10, got.Preferences.SlideCount)
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.True(t, IsRateLimited(err))
			},
		},
		{
			name:   "quota exceeded",
			status: http.StatusPaymentRequired,
			check: func(t *testing.T, err error) {
				assert.True(t, IsQuotaExceeded(err))
			},
		},
		{
			name:   "validation detail from body",
			status: http.StatusBadRequest,
			body:   `{"detail": "Topic must contain at least 2 words"}`,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "Topic must contain at least 2 words", err.Error())
			},
		},
		{
			name:   "validation without detail",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "invalid request", err.Error())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			defer srv.Close()

			_, err := New(srv.URL).Generate(context.Background(), GenerateRequest{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGenerateRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(GenerateResponse{PresentationID: "job-2"})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Generate(context.Background(), GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "job-2", resp.PresentationID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateDoesNotRetryRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Generate(context.Background(), GenerateRequest{})
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/status/job-1", r.URL.Path)
		json.NewEncoder(w).Encode(domain.Presentation{
			ID:     "job-1",
			Status: domain.StatusProcessing,
			SlidesPreview: []domain.SlidePreview{
				{Title: "Overview"},
			},
		})
	}))
	defer srv.Close()

	p, err := New(srv.URL).Status(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, p.Status)
	assert.Len(t, p.SlidesPreview, 1)
}

func TestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Status(context.Background(), "gone")
	assert.True(t, IsNotFound(err))
}

func TestListByUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/presentations/user_abc", r.URL.Path)
		json.NewEncoder(w).Encode([]domain.Summary{
			{ID: "b", Topic: "Newest"},
			{ID: "a", Topic: "Oldest"},
		})
	}))
	defer srv.Close()

	items, err := New(srv.URL).ListByUser(context.Background(), "user_abc")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
}

func TestDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/presentation/job-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Delete(context.Background(), "job-1"))
}

func TestDeleteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL).Delete(context.Background(), "gone")
	assert.True(t, IsNotFound(err))
}

func TestSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/suggestions", r.URL.Path)
		var req SuggestionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "marketing", req.Topic)

		json.NewEncoder(w).Encode(map[string][]string{
			"suggestions": {"Marketing Strategies for 2024", "Digital Marketing Essentials"},
		})
	}))
	defer srv.Close()

	got, err := New(srv.URL).Suggestions(context.Background(), SuggestionRequest{
		Topic:      "marketing",
		SlideCount: 10,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUserStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/user/user_abc/stats", r.URL.Path)
		json.NewEncoder(w).Encode(domain.Stats{
			PresentationsToday: 3,
			DailyLimit:         10,
			Remaining:          7,
		})
	}))
	defer srv.Close()

	stats, err := New(srv.URL).UserStats(context.Background(), "user_abc")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PresentationsToday)
	assert.Equal(t, 7, stats.Remaining)
}

func TestDownload(t *testing.T) {
	payload := []byte("PK\x03\x04 fake pptx bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/download/job-1", r.URL.Path)
		w.Write(payload)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := New(srv.URL).Download(context.Background(), "job-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL).Status(context.Background(), "job-1")
	require.Error(t, err)
	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
	assert.True(t, Retriable(err))
}
