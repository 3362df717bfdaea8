// Package assistant provides intervention sink implementations: the
// console sink for local use and a Claude-backed coach that turns a
// dispatched trigger into a short nudge message. The monitor engine never
// generates language itself; all wording lives on this side of the sink
// boundary.
package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/questpulse/questpulse/internal/monitor"
)

// ModelHaiku is the cost-efficient default for nudge generation; a nudge
// is a couple of sentences, not deep reasoning.
const ModelHaiku = "claude-3-5-haiku-20241022"

// GetModel returns the model for nudge generation, checking
// QP_ASSISTANT_MODEL first.
func GetModel() string {
	if model := os.Getenv("QP_ASSISTANT_MODEL"); model != "" {
		return model
	}
	return ModelHaiku
}

// Coach is an InterventionSink backed by the Anthropic API. It composes
// a short, level-appropriate nudge from the trigger and snapshot and
// prints it to the terminal.
type Coach struct {
	client *anthropic.Client
	model  string
}

// CoachConfig holds configuration for creating a Coach
type CoachConfig struct {
	// APIKey is the Anthropic API key (if empty, reads ANTHROPIC_API_KEY)
	APIKey string
	// Model to use (default: haiku via GetModel)
	Model string
}

// NewCoach creates a Claude-backed intervention sink
func NewCoach(cfg *CoachConfig) (*Coach, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetModel()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Coach{client: &client, model: model}, nil
}

// Deliver generates and prints a nudge for the dispatched trigger
func (c *Coach) Deliver(ctx context.Context, req *monitor.InterventionRequest) error {
	prompt := buildNudgePrompt(req)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty response from model")
	}

	fmt.Printf("\n[%s] %s\n\n", req.Response, text)
	return nil
}

// buildNudgePrompt summarizes the snapshot for the model. Tone scales
// with the response level: popup stays light, coach digs in.
func buildNudgePrompt(req *monitor.InterventionRequest) string {
	var b strings.Builder

	b.WriteString("You are a supportive productivity assistant embedded in a personal task tracker.\n")
	switch req.Response {
	case monitor.ResponseCoach:
		b.WriteString("Write a direct, 2-3 sentence coaching note about the situation below. Name the problem and suggest one concrete next step.\n")
	case monitor.ResponseFriend:
		b.WriteString("Write a warm, 1-2 sentence check-in about the situation below, like a friend would.\n")
	default:
		b.WriteString("Write one short, gentle sentence nudging the user about the situation below.\n")
	}

	fmt.Fprintf(&b, "\nTrigger: %s\n", req.TriggerType)
	m := req.Metrics
	fmt.Fprintf(&b, "Overall status: %s\n", m.OverallStatus)
	if len(m.StatusReasons) > 0 {
		fmt.Fprintf(&b, "Reasons: %s\n", strings.Join(m.StatusReasons, "; "))
	}
	fmt.Fprintf(&b, "Today: %d of %d tasks done (weighted rate %.0f%%)\n",
		m.TodayCompletedCount, m.TodayTotalCount, m.WeightedCompletionRate)
	fmt.Fprintf(&b, "Minutes since last completion: %d\n", m.TimeSinceLastCompletion)
	fmt.Fprintf(&b, "Overdue tasks: %d\n", m.OverdueTasksCount)
	for _, q := range m.AtRiskQuests {
		fmt.Fprintf(&b, "At-risk quest: %q (%.0f%% done, needs %.0f%%/day, risk=%s, suggest=%s)\n",
			q.QuestTitle, q.CurrentProgress, q.RequiredDailyProgress, q.RiskLevel, q.SuggestedAction)
	}

	b.WriteString("\nRespond with the message only, no preamble.\n")
	return b.String()
}
