package sentry

import (
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestScrubEvent_RedactsSensitiveHeaders(t *testing.T) {
	event := &sentry.Event{
		Request: &sentry.Request{
			Headers: map[string]string{
				"Authorization":  "Bearer secret-token",
				"Cookie":         "aura_session=abc123",
				"X-Internal-Key": "shared-secret",
				"Content-Type":   "application/json",
			},
		},
	}

	result := ScrubEvent(event, nil)

	for _, header := range []string{"Authorization", "Cookie", "X-Internal-Key"} {
		if result.Request.Headers[header] != "[Filtered]" {
			t.Errorf("expected %s to be [Filtered], got %s", header, result.Request.Headers[header])
		}
	}
	if result.Request.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected Content-Type to be preserved, got %s", result.Request.Headers["Content-Type"])
	}
}

func TestScrubEvent_StripsRequestBody(t *testing.T) {
	event := &sentry.Event{
		Request: &sentry.Request{
			Data: `{"refresh_token":"abc123"}`,
		},
	}

	result := ScrubEvent(event, nil)

	if result.Request.Data != "" {
		t.Errorf("expected request body to be stripped, got %s", result.Request.Data)
	}
}

func TestScrubEvent_ScrubsSensitiveTags(t *testing.T) {
	event := &sentry.Event{
		Tags: map[string]string{
			"environment":   "production",
			"token":         "secret-value",
			"refresh_token": "another-secret",
		},
	}

	result := ScrubEvent(event, nil)

	if result.Tags["token"] != "[Filtered]" {
		t.Errorf("expected token tag to be [Filtered], got %s", result.Tags["token"])
	}
	if result.Tags["refresh_token"] != "[Filtered]" {
		t.Errorf("expected refresh_token tag to be [Filtered], got %s", result.Tags["refresh_token"])
	}
	if result.Tags["environment"] != "production" {
		t.Errorf("expected environment tag to be preserved, got %s", result.Tags["environment"])
	}
}

func TestScrubEvent_ScrubsBreadcrumbData(t *testing.T) {
	event := &sentry.Event{
		Breadcrumbs: []*sentry.Breadcrumb{
			{
				Data: map[string]interface{}{
					"access_token": "secret",
					"guild_id":     "g42",
				},
			},
		},
	}

	result := ScrubEvent(event, nil)

	if result.Breadcrumbs[0].Data["access_token"] != "[Filtered]" {
		t.Errorf("expected access_token to be [Filtered], got %v", result.Breadcrumbs[0].Data["access_token"])
	}
	if result.Breadcrumbs[0].Data["guild_id"] != "g42" {
		t.Errorf("expected guild_id to be preserved, got %v", result.Breadcrumbs[0].Data["guild_id"])
	}
}

func TestScrubEvent_NilRequest(t *testing.T) {
	event := &sentry.Event{}

	// Should not panic
	result := ScrubEvent(event, nil)
	if result == nil {
		t.Fatal("expected event to be returned")
	}
}
