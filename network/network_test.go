package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"
)

const aliceDoc = `#+TITLE: Feed
#+NICK: alice
#+FOLLOW: bob https://bob.example/social.org

* Posts

**
:PROPERTIES:
:ID: 2025-05-01T12:00:00+00:00
:END:

hello fediverse
`

const bobDoc = `#+TITLE: Feed
#+NICK: bob

* Posts

**
:PROPERTIES:
:ID: 2025-05-02T12:00:00+00:00
:END:

hi back
`

func testFetcher(retries int) *Fetcher {
	f := NewFetcher(Config{Timeout: 5 * time.Second, Retries: retries, RequestsPerSec: 1000}, nil)
	gock.InterceptClient(f.client)
	return f
}

func TestFetch_ParsesDocument(t *testing.T) {
	defer gock.Off()
	gock.New("https://alice.example").Get("/social.org").Reply(200).BodyString(aliceDoc)

	f := testFetcher(0)
	doc, warnings, err := f.Fetch(context.Background(), "https://alice.example/social.org")
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if doc.Profile.Nick() != "alice" {
		t.Errorf("Expected nick 'alice', got %q", doc.Profile.Nick())
	}
	if len(doc.Posts) != 1 || doc.Posts[0].Source() != "https://alice.example/social.org" {
		t.Errorf("Expected posts stamped with the source URL, got %+v", doc.Posts)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	defer gock.Off()
	gock.New("https://alice.example").Get("/social.org").Reply(500)
	gock.New("https://alice.example").Get("/social.org").Reply(200).BodyString(aliceDoc)

	f := testFetcher(2)
	doc, _, err := f.Fetch(context.Background(), "https://alice.example/social.org")
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if doc.Profile.Nick() != "alice" {
		t.Errorf("Expected document from the retried request, got %q", doc.Profile.Nick())
	}
	if !gock.IsDone() {
		t.Error("Expected both mocked responses consumed")
	}
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	defer gock.Off()
	gock.New("https://alice.example").Get("/social.org").Reply(404)

	f := testFetcher(3)
	_, _, err := f.Fetch(context.Background(), "https://alice.example/social.org")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if fe.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", fe.StatusCode)
	}
	if !gock.IsDone() {
		t.Error("Expected exactly one request for a client error")
	}
}

func TestFetch_ExhaustedRetriesReportLastError(t *testing.T) {
	defer gock.Off()
	gock.New("https://alice.example").Get("/social.org").Persist().Reply(500)

	f := testFetcher(1)
	_, _, err := f.Fetch(context.Background(), "https://alice.example/social.org")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError after exhausted retries, got %v", err)
	}
	if fe.StatusCode != 500 {
		t.Errorf("Expected status 500, got %d", fe.StatusCode)
	}
}

func TestFetchAll_PartialFailure(t *testing.T) {
	defer gock.Off()
	gock.New("https://alice.example").Get("/social.org").Reply(200).BodyString(aliceDoc)
	gock.New("https://bob.example").Get("/social.org").Reply(404)

	f := testFetcher(0)
	results := f.FetchAll(context.Background(), []string{
		"https://alice.example/social.org",
		"https://bob.example/social.org",
	})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Doc == nil {
		t.Errorf("Expected first result to succeed, got %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("Expected second result to carry its error")
	}
	if results[1].URL != "https://bob.example/social.org" {
		t.Errorf("Expected results in input order, got %q", results[1].URL)
	}
}

func TestFetchAll_QueuedFetchesCompleteBeyondWorkerCap(t *testing.T) {
	defer gock.Off()
	urls := []string{
		"https://alice.example/social.org",
		"https://bob.example/social.org",
		"https://carol.example/social.org",
	}
	gock.New("https://alice.example").Get("/social.org").Reply(200).BodyString(aliceDoc)
	gock.New("https://bob.example").Get("/social.org").Reply(200).BodyString(bobDoc)
	gock.New("https://carol.example").Get("/social.org").Reply(200).BodyString(bobDoc)

	// One worker serializes the batch into waves; later waves must not
	// run under any shared deadline.
	f := NewFetcher(Config{Timeout: 5 * time.Second, MaxConcurrent: 1, RequestsPerSec: 1000}, nil)
	gock.InterceptClient(f.client)

	results := f.FetchAll(context.Background(), urls)
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("Result %d: expected success, got %v", i, res.Err)
		}
	}
}

func TestFetchFollows(t *testing.T) {
	defer gock.Off()
	gock.New("https://alice.example").Get("/social.org").Reply(200).BodyString(aliceDoc)
	gock.New("https://bob.example").Get("/social.org").Reply(200).BodyString(bobDoc)

	f := testFetcher(0)
	doc, _, err := f.Fetch(context.Background(), "https://alice.example/social.org")
	if err != nil {
		t.Fatal(err)
	}

	results := f.FetchFollows(context.Background(), doc.Profile)
	if len(results) != 1 {
		t.Fatalf("Expected 1 followed feed, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Doc.Profile.Nick() != "bob" {
		t.Errorf("Expected bob's document, got %+v", results[0])
	}
}

func TestFetch_ContextCancellation(t *testing.T) {
	f := NewFetcher(Config{Timeout: 5 * time.Second, RequestsPerSec: 1000}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.Fetch(ctx, "https://alice.example/social.org")
	if err == nil {
		t.Error("Expected error for cancelled context")
	}
}
