package genai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type fakeCompletions struct {
	content string
	err     error
	gotBody openai.ChatCompletionNewParams
}

func (f *fakeCompletions) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.gotBody = body
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testClient(fake *fakeCompletions) *Client {
	return &Client{
		chat:        fake,
		model:       openai.ChatModelGPT4oMini,
		timeout:     5 * time.Second,
		maxTokens:   300,
		temperature: 0.7,
	}
}

func TestGenerateTrimsContent(t *testing.T) {
	fake := &fakeCompletions{content: "  stay hydrated  \n"}
	c := testClient(fake)

	got, err := c.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatal(err)
	}
	if got != "stay hydrated" {
		t.Errorf("Generate = %q, want trimmed content", got)
	}
	if len(fake.gotBody.Messages) != 2 {
		t.Errorf("sent %d messages, want system+user", len(fake.gotBody.Messages))
	}
}

func TestGenerateEmptyChoicesIsError(t *testing.T) {
	c := testClient(&fakeCompletions{content: ""})
	if _, err := c.Generate(context.Background(), "sys", "user"); err == nil {
		t.Error("empty completion accepted")
	}
}

func TestGenerateForFallsBackOnError(t *testing.T) {
	c := testClient(&fakeCompletions{err: errors.New("rate limited")})
	got, err := c.GenerateFor(context.Background(), TopicSymptoms, PromptContext{})
	if err == nil {
		t.Error("upstream error swallowed")
	}
	if got != Fallback(TopicSymptoms) {
		t.Errorf("GenerateFor = %q, want the symptoms fallback", got)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("missing API key accepted")
	}
	if _, err := NewClient(WithAPIKey("sk-test")); err != nil {
		t.Errorf("explicit API key rejected: %v", err)
	}
}

func TestBuildPromptUsesTopicInputs(t *testing.T) {
	pc := PromptContext{
		Name: "jane", Age: 29, Sex: "female", Height: 165, Weight: 60, Location: "nairobi",
		Symptoms: "fever and cough", Severity: "moderate", DurationDays: 2,
	}
	system, user := BuildPrompt(TopicSymptoms, pc)
	if system == "" {
		t.Error("empty system prompt")
	}
	for _, want := range []string{"jane", "nairobi", "fever and cough", "moderate"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestFallbackIsTotal(t *testing.T) {
	topics := []Topic{TopicHealthTip, TopicSymptoms, TopicSymptomFollowup, TopicOverallHealth, TopicFitnessPlan, TopicMealPlan, TopicMenstrual}
	for _, topic := range topics {
		if Fallback(topic) == "" {
			t.Errorf("no fallback for topic %q", topic)
		}
	}
	if Fallback("unknown") == "" {
		t.Error("unknown topic has no fallback")
	}
}
