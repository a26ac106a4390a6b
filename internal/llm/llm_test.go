package llm

import (
	"context"
	"errors"
	"testing"
)

type scriptedCaller struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (c *scriptedCaller) next(prompt string) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, prompt)
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	resp := ""
	if i < len(c.responses) {
		resp = c.responses[i]
	}
	return resp, err
}

func (c *scriptedCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.next(prompt)
}

func (c *scriptedCaller) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.next(prompt)
}

func TestRunJSONSucceedsFirstAttempt(t *testing.T) {
	caller := &scriptedCaller{responses: []string{`{"value": 7}`}}
	exec := NewStageExecutor(caller)
	var out struct {
		Value int `json:"value"`
	}
	m, err := exec.RunJSON(context.Background(), "structuring", "extract", &out, func() error { return nil })
	if err != nil {
		t.Fatalf("RunJSON: %v", err)
	}
	if out.Value != 7 {
		t.Fatalf("out.Value = %d", out.Value)
	}
	if m.Attempts != 1 || m.ContentRetries != 0 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestRunJSONRetriesOnBadJSONWithFeedback(t *testing.T) {
	caller := &scriptedCaller{responses: []string{"not json", `{"value": 1}`}}
	exec := NewStageExecutor(caller)
	var out struct {
		Value int `json:"value"`
	}
	m, err := exec.RunJSON(context.Background(), "structuring", "extract", &out, func() error { return nil })
	if err != nil {
		t.Fatalf("RunJSON: %v", err)
	}
	if m.Attempts != 2 || m.ContentRetries != 1 {
		t.Fatalf("metrics = %+v", m)
	}
	if len(caller.prompts) != 2 || caller.prompts[1] == caller.prompts[0] {
		t.Fatal("second attempt must carry corrective feedback")
	}
}

func TestRunJSONRetriesOnValidationFailure(t *testing.T) {
	caller := &scriptedCaller{responses: []string{`{"value": -1}`, `{"value": 3}`}}
	exec := NewStageExecutor(caller)
	var out struct {
		Value int `json:"value"`
	}
	_, err := exec.RunJSON(context.Background(), "structuring", "extract", &out, func() error {
		if out.Value < 0 {
			return errors.New("value must be non-negative")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunJSON: %v", err)
	}
	if out.Value != 3 {
		t.Fatalf("out.Value = %d", out.Value)
	}
}

func TestRunJSONGivesUpAfterThreeContentFailures(t *testing.T) {
	caller := &scriptedCaller{responses: []string{"x", "y", "z"}}
	exec := NewStageExecutor(caller)
	var target struct{}
	_, err := exec.RunJSON(context.Background(), "structuring", "extract", &target, func() error { return nil })
	if err == nil {
		t.Fatal("expected failure after 3 unparsable responses")
	}
	if caller.calls != 3 {
		t.Fatalf("calls = %d, want 3", caller.calls)
	}
}

func TestRunJSONDoesNotRetryClientErrors(t *testing.T) {
	caller := &scriptedCaller{errs: []error{errors.New("status code: 400 bad request")}}
	exec := NewStageExecutor(caller)
	var out struct{}
	_, err := exec.RunJSON(context.Background(), "structuring", "extract", &out, func() error { return nil })
	if err == nil {
		t.Fatal("expected transport failure")
	}
	if caller.calls != 1 {
		t.Fatalf("client errors must not retry, calls = %d", caller.calls)
	}
}

func TestRunTextStripsWhitespaceAndRetriesEmpty(t *testing.T) {
	caller := &scriptedCaller{responses: []string{"   ", "Hujah ringkas."}}
	exec := NewStageExecutor(caller)
	got, m, err := exec.RunText(context.Background(), "argument_memo", "draft a memo")
	if err != nil {
		t.Fatalf("RunText: %v", err)
	}
	if got != "Hujah ringkas." {
		t.Fatalf("got %q", got)
	}
	if m.Attempts != 2 || m.ContentRetries != 1 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestStripCodeFences(t *testing.T) {
	in := "```json\n{\"a\":1}\n```"
	got := StripCodeFences(in)
	if got != "{\"a\":1}" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestBackoffDelayGrowsLinearly(t *testing.T) {
	for attempt, want := range map[int]float64{0: 1, 1: 1, 2: 2, 3: 3} {
		if got := backoffDelay(attempt).Seconds(); got != want {
			t.Fatalf("backoffDelay(%d) = %vs, want %vs", attempt, got, want)
		}
	}
}

func TestRetryableTransport(t *testing.T) {
	if retryableTransport(assertErr("status code: 400 bad request")) {
		t.Fatal("client errors must not retry")
	}
	if !retryableTransport(assertErr("status code: 429 rate limited")) {
		t.Fatal("rate limits must retry")
	}
	if !retryableTransport(assertErr("status=500 upstream error")) {
		t.Fatal("server errors must retry")
	}
}

func TestClassifyTransportErrorAvoidsBroadNumericMatch(t *testing.T) {
	if got := classifyTransportError(assertErr("failed after 5 retries while waiting 4 seconds")); got != failureServer {
		t.Fatalf("expected default server classification, got %v", got)
	}
	if got := classifyTransportError(assertErr("status code: 400 bad request")); got != failureClient {
		t.Fatalf("expected client failure classification, got %v", got)
	}
	if got := classifyTransportError(assertErr("status=500 upstream error")); got != failureServer {
		t.Fatalf("expected server failure classification, got %v", got)
	}
}

func TestNewAnthropicCallerFromEnvRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCallerFromEnv(""); err == nil {
		t.Fatal("expected error without ANTHROPIC_API_KEY")
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
